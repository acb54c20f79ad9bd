package server

import (
	"errors"
	"fmt"

	"github.com/derktes/ir-remote/emission"
	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/remote"
)

var errEmptyFrame = errors.New("frame has no samples")

// decodeFrame turns a collector capture into a decoded NEC message and, when
// one of configs knows the header and command, the key it belongs to.
func decodeFrame(f taggedFrame, configs []remote.Config) (emission.Capture, error) {
	capture := emission.Capture{CollectorID: f.CollectorID}
	if len(f.Frame.Data) == 0 {
		return capture, errEmptyFrame
	}
	pattern, err := ir.FromMarkSpacePairs(f.Frame.Data, f.Frame.Resolution, ir.NECCarrierHz)
	if err != nil {
		return capture, err
	}

	var codec ir.NECCodec
	if pattern.Len() == ir.NECRepeatLength {
		if err := codec.DecodeRepeat(pattern); err != nil {
			return capture, fmt.Errorf("decode repeat: %w", err)
		}
		capture.Repeat = true
		return capture, nil
	}

	header, command, err := codec.Decode(pattern)
	if err != nil {
		return capture, fmt.Errorf("decode frame: %w", err)
	}
	capture.Header = header
	capture.Command = command
	if cfg, key, ok := matchKey(configs, header, command); ok {
		capture.ConfigID = cfg.ID
		capture.KeyName = key.Name
		capture.KeyLabel = key.Label
	}
	return capture, nil
}

func matchKey(configs []remote.Config, header uint16, command uint8) (remote.Config, remote.Key, bool) {
	for _, cfg := range configs {
		if cfg.Protocol != ir.ProtocolNEC || cfg.Header != header {
			continue
		}
		for _, k := range cfg.Keys {
			if k.Command() == command {
				return cfg, k, true
			}
		}
	}
	return remote.Config{}, remote.Key{}, false
}
