package remote

import (
	"fmt"
	"iter"
	"strings"
)

// Catalog is the ordered key list of a remote. Key names are unique; codes
// may repeat. Edits return a new Catalog and leave the receiver untouched.
type Catalog []Key

// FindByName returns the key called name.
func (c Catalog) FindByName(name string) (Key, bool) {
	for _, k := range c {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// FindByCode returns the first key with code.
func (c Catalog) FindByCode(code uint16) (Key, bool) {
	for _, k := range c {
		if k.Code == code {
			return k, true
		}
	}
	return Key{}, false
}

// InCategory yields the keys of category in catalog order.
func (c Catalog) InCategory(category Category) iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for _, k := range c {
			if k.Category != category {
				continue
			}
			if !yield(k) {
				return
			}
		}
	}
}

// Validate checks that every key is named and names are unique.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c))
	for i, k := range c {
		if strings.TrimSpace(k.Name) == "" {
			return fmt.Errorf("key %d: %w", i, ErrEmptyKeyName)
		}
		if _, ok := seen[k.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateKeyName, k.Name)
		}
		seen[k.Name] = struct{}{}
	}
	return nil
}

// Clone returns a copy that shares no storage with c.
func (c Catalog) Clone() Catalog {
	if c == nil {
		return nil
	}
	out := make(Catalog, len(c))
	copy(out, c)
	return out
}

// Add appends key.
func (c Catalog) Add(key Key) (Catalog, error) {
	out := append(c.Clone(), key)
	if err := out.Validate(); err != nil {
		return c, err
	}
	return out, nil
}

// Replace swaps the key at index i for key.
func (c Catalog) Replace(i int, key Key) (Catalog, error) {
	if i < 0 || i >= len(c) {
		return c, fmt.Errorf("key index %d out of range [0, %d)", i, len(c))
	}
	out := c.Clone()
	out[i] = key
	if err := out.Validate(); err != nil {
		return c, err
	}
	return out, nil
}

// Remove drops the key at index i.
func (c Catalog) Remove(i int) (Catalog, error) {
	if i < 0 || i >= len(c) {
		return c, fmt.Errorf("key index %d out of range [0, %d)", i, len(c))
	}
	out := make(Catalog, 0, len(c)-1)
	out = append(out, c[:i]...)
	return append(out, c[i+1:]...), nil
}

// Index returns the position of the key called name, or -1.
func (c Catalog) Index(name string) int {
	for i, k := range c {
		if k.Name == name {
			return i
		}
	}
	return -1
}
