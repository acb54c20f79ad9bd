package ir

import "fmt"

// FrequencyRange is an inclusive carrier range supported by an emitter.
type FrequencyRange struct {
	MinHz uint32 `json:"min" yaml:"min" toml:"min"`
	MaxHz uint32 `json:"max" yaml:"max" toml:"max"`
}

func (f FrequencyRange) Contains(hz uint32) bool {
	return hz >= f.MinHz && hz <= f.MaxHz
}

func (f FrequencyRange) String() string {
	return fmt.Sprintf("[%d, %d]", f.MinHz, f.MaxHz)
}

// BestCarrierFrequency picks the frequency to transmit id at. The nominal
// carrier is used when it lies in a supported range or when no ranges are
// reported. Otherwise the range endpoint closest to nominal wins; ties go to
// the earlier range, then to the lower endpoint.
func (r *Registry) BestCarrierFrequency(id ProtocolID, ranges []FrequencyRange) (uint32, error) {
	p, ok := r.protocols[id]
	if !ok {
		return 0, fmt.Errorf("%w: 0x%02X", ErrUnsupportedProtocol, uint8(id))
	}
	return closestCarrier(p.CarrierHz, ranges), nil
}

func closestCarrier(nominal uint32, ranges []FrequencyRange) uint32 {
	if len(ranges) == 0 {
		return nominal
	}
	for _, fr := range ranges {
		if fr.Contains(nominal) {
			return nominal
		}
	}
	best := ranges[0].MinHz
	bestDist := distance(nominal, best)
	for _, fr := range ranges {
		for _, hz := range [2]uint32{fr.MinHz, fr.MaxHz} {
			if d := distance(nominal, hz); d < bestDist {
				best, bestDist = hz, d
			}
		}
	}
	return best
}

func distance(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
