package ir

import "fmt"

// NEC timing constants in microseconds.
const (
	NECCarrierHz = 38000

	necLeaderPulse = 9000
	necLeaderSpace = 4500
	necBitPulse    = 560
	necZeroSpace   = 560
	necOneSpace    = 1680
	necStopPulse   = 560
	necRepeatSpace = 2250

	// NECFrameLength is leader (2) + 32 bits of pulse/space (64) + stop pulse (1).
	NECFrameLength = 2 + 32*2 + 1
	// NECRepeatLength is the length of the repeat frame.
	NECRepeatLength = 3
)

// NECCodec implements the NEC variant used by the factory remotes: a 16-bit
// header sent as high byte then low byte, an 8-bit command and its inverse,
// every byte LSB-first.
type NECCodec struct{}

// Encode builds the 67-element frame for header and command.
func (NECCodec) Encode(header uint16, command uint8) Pattern {
	timings := make([]int, 0, NECFrameLength)
	timings = append(timings, necLeaderPulse, necLeaderSpace)
	for _, b := range [4]uint8{uint8(header >> 8), uint8(header), command, ^command} {
		timings = appendByte(timings, b)
	}
	timings = append(timings, necStopPulse)
	return Pattern{CarrierHz: NECCarrierHz, Timings: timings}
}

func appendByte(timings []int, b uint8) []int {
	for i := 0; i < 8; i++ {
		space := necZeroSpace
		if (b>>i)&0x01 == 1 {
			space = necOneSpace
		}
		timings = append(timings, necBitPulse, space)
	}
	return timings
}

// EncodeRepeat returns the repeat frame sent while a key is held.
func (NECCodec) EncodeRepeat() Pattern {
	return Pattern{CarrierHz: NECCarrierHz, Timings: []int{necLeaderPulse, necRepeatSpace, necStopPulse}}
}

// Decode is the inverse of Encode.
func (NECCodec) Decode(p Pattern) (uint16, uint8, error) {
	t := p.Timings
	if len(t) != NECFrameLength {
		return 0, 0, fmt.Errorf("%w: got %d elements, want %d", ErrMalformedLength, len(t), NECFrameLength)
	}
	if err := expect(t, 0, necLeaderPulse); err != nil {
		return 0, 0, err
	}
	if err := expect(t, 1, necLeaderSpace); err != nil {
		return 0, 0, err
	}

	var bytes [4]uint8
	for bit := 0; bit < 32; bit++ {
		i := 2 + bit*2
		if err := expect(t, i, necBitPulse); err != nil {
			return 0, 0, err
		}
		switch {
		case matchNEC(t[i+1], necOneSpace):
			bytes[bit/8] |= 1 << (bit % 8)
		case matchNEC(t[i+1], necZeroSpace):
		default:
			return 0, 0, fmt.Errorf("%w: element %d is %dus, want %dus or %dus",
				ErrTimingOutOfTolerance, i+1, t[i+1], necZeroSpace, necOneSpace)
		}
	}
	if err := expect(t, NECFrameLength-1, necStopPulse); err != nil {
		return 0, 0, err
	}

	command, inverse := bytes[2], bytes[3]
	if ^command != inverse {
		return 0, 0, fmt.Errorf("%w: command 0x%02X, inverse 0x%02X", ErrChecksumMismatch, command, inverse)
	}
	return uint16(bytes[0])<<8 | uint16(bytes[1]), command, nil
}

// DecodeRepeat checks that p is a repeat frame.
func (NECCodec) DecodeRepeat(p Pattern) error {
	t := p.Timings
	if len(t) != NECRepeatLength {
		return fmt.Errorf("%w: got %d elements, want %d", ErrMalformedLength, len(t), NECRepeatLength)
	}
	for i, nominal := range [NECRepeatLength]int{necLeaderPulse, necRepeatSpace, necStopPulse} {
		if err := expect(t, i, nominal); err != nil {
			return err
		}
	}
	return nil
}

func expect(t []int, i, nominal int) error {
	if !matchNEC(t[i], nominal) {
		return fmt.Errorf("%w: element %d is %dus, want %dus", ErrTimingOutOfTolerance, i, t[i], nominal)
	}
	return nil
}

// matchNEC accepts durations within ±10% of nominal.
func matchNEC(micros, nominal int) bool {
	return micros*10 >= nominal*9 && micros*10 <= nominal*11
}

// Encode, EncodeRepeat and Decode use the NEC codec.
func Encode(header uint16, command uint8) Pattern { return NECCodec{}.Encode(header, command) }

func EncodeRepeat() Pattern { return NECCodec{}.EncodeRepeat() }

func Decode(p Pattern) (uint16, uint8, error) { return NECCodec{}.Decode(p) }
