package remote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidCodeFormat is returned by ParseCode for malformed input.
	ErrInvalidCodeFormat = errors.New("invalid key code format")
	// ErrDuplicateKeyName is returned when two keys of a catalog share a name.
	ErrDuplicateKeyName = errors.New("duplicate key name")
	// ErrEmptyKeyName is returned for keys without a name.
	ErrEmptyKeyName = errors.New("empty key name")
)

// Key is a single button of a remote.
type Key struct {
	Name     string
	Code     uint16
	Label    string
	Category Category
}

// NewKey builds a key, defaulting the label to the name.
func NewKey(name string, code uint16, label string, category Category) Key {
	if strings.TrimSpace(label) == "" {
		label = name
	}
	return Key{Name: name, Code: code, Label: label, Category: category}
}

// FormattedCode renders the code as 0x%04X.
func (k Key) FormattedCode() string {
	return fmt.Sprintf("0x%04X", k.Code)
}

// Command is the 8-bit command byte carried on the wire.
func (k Key) Command() uint8 {
	return uint8(k.Code & 0xFF)
}

// ParseCode accepts "0x0001"/"0X1" hexadecimal or plain decimal key codes.
func ParseCode(s string) (uint16, error) {
	trimmed := strings.TrimSpace(s)
	base := 10
	digits := trimmed
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		base = 16
		digits = trimmed[2:]
	}
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCodeFormat, s)
	}
	v, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCodeFormat, s)
	}
	return uint16(v), nil
}
