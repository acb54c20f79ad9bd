package collector

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FrameData is one capture as reported by the receiver: [mark, space] pairs
// counted in ticks of Resolution microseconds.
type FrameData struct {
	Resolution int     `json:"resolution"`
	Data       [][]int `json:"data"`
}

// TaggedFrame is a capture labelled with the collector that saw it.
type TaggedFrame struct {
	CollectorID string    `json:"collectorId"`
	Frame       FrameData `json:"frame"`
}

var errNoSamples = errors.New("line carries no samples")

// parseFrameLine accepts either a bare frame or one wrapped as {"frame": ...}.
func parseFrameLine(line []byte) (FrameData, error) {
	var wrapped struct {
		Frame *FrameData `json:"frame"`
		FrameData
	}
	if err := json.Unmarshal(line, &wrapped); err != nil {
		return FrameData{}, fmt.Errorf("parse frame: %w", err)
	}
	frame := wrapped.FrameData
	if wrapped.Frame != nil {
		frame = *wrapped.Frame
	}
	if len(frame.Data) == 0 {
		return FrameData{}, errNoSamples
	}
	return frame, nil
}
