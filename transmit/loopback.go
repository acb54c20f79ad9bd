package transmit

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/derktes/ir-remote/ir"
)

// Sent is one pattern played by a Loopback.
type Sent struct {
	FrequencyHz uint32
	Pattern     ir.Pattern
}

// Loopback accepts every pattern and remembers it. Used for dry runs and
// tests.
type Loopback struct {
	mu     sync.Mutex
	sent   []Sent
	ranges []ir.FrequencyRange
	logger *slog.Logger
}

func NewLoopback(ranges []ir.FrequencyRange, logger *slog.Logger) *Loopback {
	return &Loopback{ranges: slices.Clone(ranges), logger: logger}
}

func (l *Loopback) Send(frequencyHz uint32, pattern ir.Pattern) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, Sent{FrequencyHz: frequencyHz, Pattern: ir.Pattern{
		CarrierHz: pattern.CarrierHz,
		Timings:   slices.Clone(pattern.Timings),
	}})
	l.logger.Debug("loopback transmit", "frequency", frequencyHz, "elements", pattern.Len())
	return nil
}

func (l *Loopback) HasEmitter() bool { return true }

func (l *Loopback) SupportedFrequencyRanges() []ir.FrequencyRange {
	return slices.Clone(l.ranges)
}

// Sent returns a copy of every pattern played so far.
func (l *Loopback) Sent() []Sent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.sent)
}
