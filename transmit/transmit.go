// Package transmit holds the infrared emitters the emission coordinator can
// drive: none, an in-process loopback, and a serial IR blaster.
package transmit

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/derktes/ir-remote/emission"
	"github.com/derktes/ir-remote/ir"
)

var (
	// ErrNoEmitter is returned by Send on a device without an emitter.
	ErrNoEmitter = errors.New("no infrared emitter present")
	// ErrRejected is returned when the blaster answers ERR.
	ErrRejected = errors.New("emitter rejected pattern")
	// ErrUnexpectedReply is returned for acknowledgements other than OK or ERR.
	ErrUnexpectedReply = errors.New("unexpected emitter reply")
)

// Kinds accepted by Open.
const (
	KindNone     = "none"
	KindLoopback = "loopback"
	KindSerial   = "serial"
)

// Absent models a device without an infrared emitter.
type Absent struct{}

func (Absent) Send(uint32, ir.Pattern) error { return ErrNoEmitter }

func (Absent) HasEmitter() bool { return false }

func (Absent) SupportedFrequencyRanges() []ir.FrequencyRange { return nil }

// Open builds the transmitter named by kind. port and baud are only used by
// the serial kind.
func Open(kind, port string, baud int, ranges []ir.FrequencyRange, logger *slog.Logger) (emission.Transmitter, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindNone:
		return Absent{}, nil
	case KindLoopback:
		return NewLoopback(ranges, logger), nil
	case KindSerial:
		tx, err := OpenSerial(port, baud, ranges, logger)
		if err != nil {
			return nil, err
		}
		return tx, nil
	default:
		return nil, fmt.Errorf("transmitter kind: unsupported value %q", kind)
	}
}
