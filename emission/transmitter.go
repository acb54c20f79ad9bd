package emission

import "github.com/derktes/ir-remote/ir"

// Transmitter is the infrared emitter capability. Send blocks until the
// hardware has played the pattern.
type Transmitter interface {
	Send(frequencyHz uint32, pattern ir.Pattern) error
	HasEmitter() bool
	// SupportedFrequencyRanges returns nil when the emitter reports no limits.
	SupportedFrequencyRanges() []ir.FrequencyRange
}
