package remote

import (
	"encoding/json"
	"time"
)

// Metadata is the list view of a configuration served by the distribution
// server.
type Metadata struct {
	ID          string
	Name        string
	Description string
	Version     string
	UpdatedAt   time.Time
}

// DefaultVersion is reported for configurations without an explicit version.
const DefaultVersion = "1.0"

// Metadata summarises c.
func (c Config) Metadata() Metadata {
	return Metadata{ID: c.ID, Name: c.Name, Version: DefaultVersion, UpdatedAt: c.UpdatedAt}
}

type metadataRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	UpdatedAt   int64  `json:"updated_at"`
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadataRecord{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Version:     m.Version,
		UpdatedAt:   Millis(m.UpdatedAt),
	})
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var r metadataRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	if r.Version == "" {
		r.Version = DefaultVersion
	}
	*m = Metadata{ID: r.ID, Name: r.Name, Description: r.Description, Version: r.Version, UpdatedAt: FromMillis(r.UpdatedAt)}
	return nil
}
