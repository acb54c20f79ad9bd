package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Pattern is a carrier-modulated timing sequence in microseconds.
// Timings alternate pulse, space, pulse, ... and end with a pulse.
type Pattern struct {
	CarrierHz uint32 `json:"frequency"`
	Timings   []int  `json:"pattern"`
}

// Len returns the number of timing elements.
func (p Pattern) Len() int {
	return len(p.Timings)
}

// Validate reports whether the pattern can be handed to an emitter:
// odd length of at least three and no negative durations.
func (p Pattern) Validate() error {
	if len(p.Timings) < 3 || len(p.Timings)%2 == 0 {
		return fmt.Errorf("%w: %d elements", ErrInvalidPattern, len(p.Timings))
	}
	for i, t := range p.Timings {
		if t < 0 {
			return fmt.Errorf("%w: element %d is negative", ErrInvalidPattern, i)
		}
	}
	return nil
}

func (p Pattern) String() string {
	parts := make([]string, len(p.Timings))
	for i, t := range p.Timings {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ",")
}

// ParsePattern parses a comma or whitespace separated list of durations.
func ParsePattern(s string, carrierHz uint32) (Pattern, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '[' || r == ']'
	})
	timings := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: %q is not a duration", ErrInvalidPattern, f)
		}
		timings = append(timings, v)
	}
	return Pattern{CarrierHz: carrierHz, Timings: timings}, nil
}

// MarkSpacePair is one captured (mark, space) sample as reported by a receiver.
type MarkSpacePair struct {
	Mark  int `json:"mark"`
	Space int `json:"space"`
}

func (m MarkSpacePair) String() string {
	return fmt.Sprintf("(%v, %v)", m.Mark, m.Space)
}

// FromMarkSpacePairs flattens raw receiver samples into a Pattern. Each sample
// is a [mark, space] pair counted in resolution-microsecond ticks. The space
// after the final mark is the inter-frame gap and is dropped.
func FromMarkSpacePairs(data [][]int, resolution int, carrierHz uint32) (Pattern, error) {
	if resolution <= 0 {
		return Pattern{}, fmt.Errorf("%w: resolution %d", ErrInvalidPattern, resolution)
	}
	timings := make([]int, 0, len(data)*2)
	for i, d := range data {
		if len(d) != 2 {
			return Pattern{}, fmt.Errorf("%w: sample %d has %d values", ErrInvalidPattern, i, len(d))
		}
		timings = append(timings, d[0]*resolution, d[1]*resolution)
	}
	if n := len(timings); n > 0 {
		timings = timings[:n-1]
	}
	return Pattern{CarrierHz: carrierHz, Timings: timings}, nil
}

// Pairs splits the pattern back into mark/space samples; the final stop pulse
// gets a zero space.
func (p Pattern) Pairs() []MarkSpacePair {
	pairs := make([]MarkSpacePair, 0, (len(p.Timings)+1)/2)
	for i := 0; i < len(p.Timings); i += 2 {
		pair := MarkSpacePair{Mark: p.Timings[i]}
		if i+1 < len(p.Timings) {
			pair.Space = p.Timings[i+1]
		}
		pairs = append(pairs, pair)
	}
	return pairs
}
