package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/derktes/ir-remote/ir"
	"github.com/derktes/ir-remote/remote"
)

// emitRequest asks the server to transmit a key. Without config_id the
// default configuration is used. code takes precedence over key_name and may
// be a number or a "0x"-prefixed string. protocol and header send code
// without a stored configuration; pattern plays raw timings at frequency.
type emitRequest struct {
	ConfigID  string          `json:"config_id"`
	KeyName   string          `json:"key_name"`
	Code      json.RawMessage `json:"code"`
	Repeat    bool            `json:"repeat"`
	Protocol  json.RawMessage `json:"protocol"`
	Header    json.RawMessage `json:"header"`
	Frequency uint32          `json:"frequency"`
	Pattern   []int           `json:"pattern"`
}

var (
	errMissingKey  = errors.New("key_name or code required")
	errMissingCode = errors.New("code required with protocol or header")
)

func present(raw json.RawMessage) bool {
	c := strings.TrimSpace(string(raw))
	return c != "" && c != "null"
}

func (r emitRequest) hasCode() bool { return present(r.Code) }

func (r emitRequest) isCustom() bool { return present(r.Protocol) || present(r.Header) }

func (r emitRequest) isRaw() bool { return len(r.Pattern) > 0 }

func (r emitRequest) code() (uint16, error) { return parseCodeField(r.Code) }

// custom resolves the protocol (default NEC) and header (default 0x8890) of
// an ad-hoc emission.
func (r emitRequest) custom() (ir.ProtocolID, uint16, error) {
	protocol := ir.ProtocolNEC
	if present(r.Protocol) {
		var n int
		if err := json.Unmarshal(r.Protocol, &n); err == nil {
			if n < 0 || n > 0xFF {
				return 0, 0, fmt.Errorf("%w: protocol %d", ir.ErrUnsupportedProtocol, n)
			}
			protocol = ir.ProtocolID(n)
		} else {
			var name string
			if err := json.Unmarshal(r.Protocol, &name); err != nil {
				return 0, 0, fmt.Errorf("%w: %s", ir.ErrUnsupportedProtocol, r.Protocol)
			}
			if protocol, err = ir.ParseProtocol(name); err != nil {
				return 0, 0, err
			}
		}
	}
	header := uint16(remote.DefaultHeader)
	if present(r.Header) {
		h, err := parseCodeField(r.Header)
		if err != nil {
			return 0, 0, fmt.Errorf("header: %w", err)
		}
		header = h
	}
	return protocol, header, nil
}

// parseCodeField accepts a JSON number or a string in ParseCode form.
func parseCodeField(raw json.RawMessage) (uint16, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 0 || n > 0xFFFF {
			return 0, fmt.Errorf("%w: %d", remote.ErrInvalidCodeFormat, n)
		}
		return uint16(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%w: %s", remote.ErrInvalidCodeFormat, raw)
	}
	return remote.ParseCode(s)
}

// taggedFrame is a raw capture published by a collector.
type taggedFrame struct {
	CollectorID string    `json:"collectorId"`
	Frame       frameData `json:"frame"`
}

type frameData struct {
	Resolution int     `json:"resolution"`
	Data       [][]int `json:"data"`
}
