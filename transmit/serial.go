package transmit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"

	"github.com/derktes/ir-remote/ir"
)

const serialReadTimeout = 2 * time.Second

type serialCommand struct {
	Frequency uint32 `json:"frequency"`
	Pattern   []int  `json:"pattern"`
}

// Serial drives an IR blaster attached to a serial port. Each Send writes one
// JSON line and waits for an "OK" or "ERR <reason>" line back.
type Serial struct {
	mu     sync.Mutex
	port   io.ReadWriteCloser
	reader *bufio.Reader
	// stale is set when an acknowledgement went missing; a late reply may
	// still arrive and must not be taken for the next one.
	stale  bool
	ranges []ir.FrequencyRange
	logger *slog.Logger
}

// OpenSerial opens the named port.
func OpenSerial(name string, baud int, ranges []ir.FrequencyRange, logger *slog.Logger) (*Serial, error) {
	if name == "" {
		return nil, errors.New("serial port not specified")
	}
	if _, err := os.Stat(name); err != nil {
		return nil, fmt.Errorf("check serial port: %w", err)
	}
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud, ReadTimeout: serialReadTimeout})
	if err != nil {
		return nil, fmt.Errorf("open serial port: %w", err)
	}
	logger.Info("opened serial emitter", "port", name, "baud", baud)
	return NewSerial(port, ranges, logger), nil
}

// NewSerial wraps an already open port.
func NewSerial(port io.ReadWriteCloser, ranges []ir.FrequencyRange, logger *slog.Logger) *Serial {
	return &Serial{
		port:   port,
		reader: bufio.NewReader(port),
		ranges: slices.Clone(ranges),
		logger: logger,
	}
}

func (s *Serial) Send(frequencyHz uint32, pattern ir.Pattern) error {
	line, err := json.Marshal(serialCommand{Frequency: frequencyHz, Pattern: pattern.Timings})
	if err != nil {
		return fmt.Errorf("encode pattern: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale {
		s.discardInput()
	}
	if _, err := s.port.Write(line); err != nil {
		return fmt.Errorf("write serial: %w", err)
	}
	reply, err := s.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && reply != "") {
		s.reader.Reset(s.port)
		s.stale = true
		return fmt.Errorf("read acknowledgement: %w", err)
	}
	reply = strings.TrimSpace(reply)
	switch {
	case reply == "OK":
		s.logger.Debug("serial transmit", "frequency", frequencyHz, "elements", pattern.Len())
		return nil
	case reply == "ERR" || strings.HasPrefix(reply, "ERR "):
		return fmt.Errorf("%w: %s", ErrRejected, strings.TrimSpace(strings.TrimPrefix(reply, "ERR")))
	default:
		s.stale = true
		return fmt.Errorf("%w: %q", ErrUnexpectedReply, reply)
	}
}

// discardInput drops buffered replies and, when the port supports it, the
// bytes still queued by the driver.
func (s *Serial) discardInput() {
	s.reader.Reset(s.port)
	if f, ok := s.port.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			s.logger.Warn("flush serial input", "error", err)
		}
	}
	s.stale = false
}

func (s *Serial) HasEmitter() bool { return true }

func (s *Serial) SupportedFrequencyRanges() []ir.FrequencyRange {
	return slices.Clone(s.ranges)
}

func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}
