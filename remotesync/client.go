package remotesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/derktes/ir-remote/remote"
)

// ErrRemoteNotFound is returned when the server does not know a configuration.
var ErrRemoteNotFound = errors.New("remote configuration not found")

const maxResponseBytes = 4 << 20

// Fetcher reads configurations from a distribution server.
type Fetcher interface {
	ListMetadata(ctx context.Context) ([]remote.Metadata, error)
	Fetch(ctx context.Context, id string) (remote.Config, error)
}

// HTTPClient talks to a distribution server over its JSON API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	retry   RetryConfig
	logger  *slog.Logger
}

// NewHTTPClient returns a client for the server at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid sync url %q", baseURL)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: timeout},
		retry:   DefaultRetryConfig(),
		logger:  logger,
	}, nil
}

// SetRetry replaces the retry policy.
func (c *HTTPClient) SetRetry(cfg RetryConfig) { c.retry = cfg }

// ListMetadata calls GET /api/configs.
func (c *HTTPClient) ListMetadata(ctx context.Context) ([]remote.Metadata, error) {
	var out []remote.Metadata
	if err := c.getJSON(ctx, "/api/configs", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch calls GET /api/configs/{id}.
func (c *HTTPClient) Fetch(ctx context.Context, id string) (remote.Config, error) {
	var cfg remote.Config
	if err := c.getJSON(ctx, "/api/configs/"+url.PathEscape(id), &cfg); err != nil {
		return remote.Config{}, err
	}
	return cfg, nil
}

// FetchDefault calls GET /api/configs/default.
func (c *HTTPClient) FetchDefault(ctx context.Context) (remote.Config, error) {
	var cfg remote.Config
	if err := c.getJSON(ctx, "/api/configs/default", &cfg); err != nil {
		return remote.Config{}, err
	}
	return cfg, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, into any) error {
	target := c.baseURL + path
	var body []byte
	err := WithRetry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Debug("sync request failed", "url", target, "error", err)
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, resp.Body)
			return &StatusError{Method: http.MethodGet, URL: target, Code: resp.StatusCode}
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return err
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrRemoteNotFound, path)
		}
		return err
	}
	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}
