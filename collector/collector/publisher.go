package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const publishTimeout = 5 * time.Second

// Publisher delivers tagged frames to the server.
type Publisher interface {
	Publish(ctx context.Context, frame TaggedFrame) error
}

type publishClient struct {
	serverURL string
	http      *http.Client
	logger    *slog.Logger
}

// NewPublishClient posts frames to the decode endpoint of the server at
// serverURL.
func NewPublishClient(serverURL string, logger *slog.Logger) (Publisher, error) {
	u, err := url.Parse(strings.TrimRight(serverURL, "/") + "/api/decode")
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", serverURL)
	}
	return &publishClient{
		serverURL: u.String(),
		http:      &http.Client{Timeout: publishTimeout},
		logger:    logger,
	}, nil
}

func (pc *publishClient) Publish(ctx context.Context, frame TaggedFrame) error {
	body, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pc.serverURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := pc.http.Do(req)
	if err != nil {
		return fmt.Errorf("publish frame: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	pc.logger.Debug("published frame", "status", resp.StatusCode)
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("publish frame: server returned %d", resp.StatusCode)
	}
	return nil
}
