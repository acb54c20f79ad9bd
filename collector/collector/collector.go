// Package collector forwards frames captured by a serial IR receiver to the
// server for decoding.
package collector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tarm/serial"

	"github.com/derktes/ir-remote/config"
	"github.com/derktes/ir-remote/ir"
)

// Collector reads newline-delimited JSON frames and publishes them tagged
// with its id.
type Collector struct {
	id        string
	publisher Publisher
	logger    *slog.Logger
}

func New(id string, publisher Publisher, logger *slog.Logger) (*Collector, error) {
	if id == "" {
		return nil, errors.New("collector id not specified")
	}
	return &Collector{id: id, publisher: publisher, logger: logger}, nil
}

// Stats counts what Run did with the lines it read.
type Stats struct {
	Lines     int
	Decoded   int
	Published int
}

// Run consumes r until EOF or ctx is done. Frames that fail to decode
// locally are still published; the server has the configurations to match
// them against.
func (c *Collector) Run(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	lineScanner := bufio.NewScanner(r)
	for lineScanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := lineScanner.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.Lines++
		c.logger.Debug("received frame", "line", string(line))

		frame, err := parseFrameLine(line)
		if err != nil {
			c.logger.Warn("skipping line", "error", err)
			continue
		}
		if c.decodeLocally(frame) {
			stats.Decoded++
		}

		if err := c.publisher.Publish(ctx, TaggedFrame{CollectorID: c.id, Frame: frame}); err != nil {
			c.logger.Warn("publish failed", "error", err)
			continue
		}
		stats.Published++
	}
	if err := lineScanner.Err(); err != nil && ctx.Err() == nil {
		return stats, err
	}
	return stats, nil
}

func (c *Collector) decodeLocally(frame FrameData) bool {
	pattern, err := ir.FromMarkSpacePairs(frame.Data, frame.Resolution, ir.NECCarrierHz)
	if err != nil {
		c.logger.Info("unusable frame", "error", err)
		return false
	}
	if pattern.Len() == ir.NECRepeatLength {
		if err := (ir.NECCodec{}).DecodeRepeat(pattern); err == nil {
			c.logger.Info("decoded repeat")
			return true
		}
	}
	header, command, err := ir.Decode(pattern)
	if err != nil {
		c.logger.Info("frame did not decode as NEC", "elements", pattern.Len(), "error", err)
		return false
	}
	c.logger.Info("decoded frame", "header", fmt.Sprintf("0x%04X", header), "command", fmt.Sprintf("0x%02X", command))
	return true
}

// Start opens the serial receiver named in cfg and forwards frames until ctx
// is cancelled.
func Start(ctx context.Context, cfg config.CollectorConfig, logger *slog.Logger) error {
	if cfg.Serial == "" {
		return errors.New("serial port not specified")
	}
	publisher, err := NewPublishClient(cfg.ServerURL, logger)
	if err != nil {
		return err
	}
	c, err := New(cfg.ID, publisher, logger)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Serial); err != nil {
		return fmt.Errorf("check serial port: %w", err)
	}
	port, err := serial.OpenPort(&serial.Config{Name: cfg.Serial, Baud: cfg.Baud})
	if err != nil {
		return fmt.Errorf("open serial port: %w", err)
	}
	defer port.Close()
	logger.Info("opened serial port", "port", cfg.Serial, "baud", cfg.Baud, "server", cfg.ServerURL)

	go func() {
		<-ctx.Done()
		logger.Info("closing serial port")
		port.Close()
	}()

	stats, err := c.Run(ctx, port)
	logger.Info("collector stopped", "lines", stats.Lines, "decoded", stats.Decoded, "published", stats.Published)
	return err
}
