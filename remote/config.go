package remote

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/derktes/ir-remote/ir"
)

// DefaultHeader is the customer code of the factory remotes.
const DefaultHeader = 0x8890

// Config is one addressable remote configuration: a protocol, a header and
// the key catalog.
type Config struct {
	ID        string
	Name      string
	Protocol  ir.ProtocolID
	Header    uint16
	Keys      Catalog
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewConfig returns an empty NEC configuration with a fresh id.
func NewConfig(name string) Config {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return Config{
		ID:        uuid.NewString(),
		Name:      name,
		Protocol:  ir.ProtocolNEC,
		Header:    DefaultHeader,
		Keys:      Catalog{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the catalog invariants.
func (c Config) Validate() error {
	if err := c.Keys.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", c.ID, err)
	}
	return nil
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	c.Keys = c.Keys.Clone()
	return c
}

// FormattedProtocol renders the protocol id as 0x%02X.
func (c Config) FormattedProtocol() string {
	return fmt.Sprintf("0x%02X", uint8(c.Protocol))
}

// FormattedHeader renders the header as 0x%04X.
func (c Config) FormattedHeader() string {
	return fmt.Sprintf("0x%04X", c.Header)
}

// ProtocolName looks up the display name of the protocol in r.
func (c Config) ProtocolName(r *ir.Registry) string {
	return r.Name(c.Protocol)
}

// FindKeyByName and FindKeyByCode delegate to the catalog.
func (c Config) FindKeyByName(name string) (Key, bool) { return c.Keys.FindByName(name) }

func (c Config) FindKeyByCode(code uint16) (Key, bool) { return c.Keys.FindByCode(code) }
