package remote

import "fmt"

// Category groups keys on a remote.
type Category int

const (
	CategoryNumber Category = iota
	CategoryDirection
	CategoryVolume
	CategoryChannel
	CategoryColor
	CategoryFunction
	CategoryFactory
)

var categoryNames = [...]string{
	CategoryNumber:    "number",
	CategoryDirection: "direction",
	CategoryVolume:    "volume",
	CategoryChannel:   "channel",
	CategoryColor:     "color",
	CategoryFunction:  "function",
	CategoryFactory:   "factory",
}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryNumber, CategoryDirection, CategoryVolume, CategoryChannel,
		CategoryColor, CategoryFunction, CategoryFactory,
	}
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory maps the interchange name to a Category. An empty name is
// treated as function, the category of keys created without one.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryFunction, nil
	}
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown key category %q", s)
}

func (c Category) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("unknown key category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
