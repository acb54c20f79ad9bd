package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/derktes/ir-remote/ir"
)

// ErrMalformedRecord is returned when an interchange record cannot be decoded.
var ErrMalformedRecord = errors.New("malformed config record")

// Record is the interchange form of a Config. Field names are fixed: stored
// configurations and the distribution server depend on them.
type Record struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Protocol  int         `json:"protocol"`
	Header    int         `json:"header"`
	Keys      []KeyRecord `json:"keys"`
	IsDefault bool        `json:"is_default"`
	CreatedAt int64       `json:"created_at"`
	UpdatedAt int64       `json:"updated_at"`
}

// KeyRecord is the interchange form of a Key.
type KeyRecord struct {
	KeyName     string `json:"key_name"`
	KeyCode     int    `json:"key_code"`
	DisplayName string `json:"display_name"`
	Category    string `json:"category"`
}

// ToRecord converts c to its interchange form.
func (c Config) ToRecord() Record {
	keys := make([]KeyRecord, len(c.Keys))
	for i, k := range c.Keys {
		keys[i] = KeyRecord{
			KeyName:     k.Name,
			KeyCode:     int(k.Code),
			DisplayName: k.Label,
			Category:    k.Category.String(),
		}
	}
	return Record{
		ID:        c.ID,
		Name:      c.Name,
		Protocol:  int(c.Protocol),
		Header:    int(c.Header),
		Keys:      keys,
		IsDefault: c.IsDefault,
		CreatedAt: Millis(c.CreatedAt),
		UpdatedAt: Millis(c.UpdatedAt),
	}
}

// Config converts r back, range-checking every numeric field.
func (r Record) Config() (Config, error) {
	if r.Protocol < 0 || r.Protocol > 0xFF {
		return Config{}, fmt.Errorf("%w: protocol %d out of range", ErrMalformedRecord, r.Protocol)
	}
	if r.Header < 0 || r.Header > 0xFFFF {
		return Config{}, fmt.Errorf("%w: header %d out of range", ErrMalformedRecord, r.Header)
	}
	keys := make(Catalog, len(r.Keys))
	for i, kr := range r.Keys {
		if kr.KeyCode < 0 || kr.KeyCode > 0xFFFF {
			return Config{}, fmt.Errorf("%w: key %s code %d out of range", ErrMalformedRecord, kr.KeyName, kr.KeyCode)
		}
		category, err := ParseCategory(kr.Category)
		if err != nil {
			return Config{}, fmt.Errorf("%w: key %s: %v", ErrMalformedRecord, kr.KeyName, err)
		}
		keys[i] = Key{Name: kr.KeyName, Code: uint16(kr.KeyCode), Label: kr.DisplayName, Category: category}
	}
	return Config{
		ID:        r.ID,
		Name:      r.Name,
		Protocol:  ir.ProtocolID(r.Protocol),
		Header:    uint16(r.Header),
		Keys:      keys,
		IsDefault: r.IsDefault,
		CreatedAt: FromMillis(r.CreatedAt),
		UpdatedAt: FromMillis(r.UpdatedAt),
	}, nil
}

func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.ToRecord())
}

func (c *Config) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	parsed, err := r.Config()
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Millis converts t to milliseconds since the epoch; the zero time maps to 0.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis is the inverse of Millis. Times are returned in UTC.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Normalize truncates t to the precision of the interchange format.
func Normalize(t time.Time) time.Time {
	return FromMillis(Millis(t))
}
