package dataset

import (
	"fmt"
	"strings"
)

// Attribute identifies one of the six hero attributes.
type Attribute int

const (
	Intelligence Attribute = iota
	Strength
	Speed
	Durability
	Power
	Combat
)

// Dims is the fixed number of attributes per entity.
const Dims = 6

const (
	// MinValue and MaxValue bound attribute values.
	MinValue = 0.0
	MaxValue = 100.0
)

var attributeNames = [Dims]string{"intelligence", "strength", "speed", "durability", "power", "combat"}

// Attributes returns all attributes in column order.
func Attributes() []Attribute {
	return []Attribute{Intelligence, Strength, Speed, Durability, Power, Combat}
}

// String returns the lower-case column name.
func (a Attribute) String() string {
	if a < 0 || int(a) >= Dims {
		return fmt.Sprintf("attribute(%d)", int(a))
	}
	return attributeNames[a]
}

// ParseAttribute resolves a column name, case-insensitively.
func ParseAttribute(name string) (Attribute, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range attributeNames {
		if candidate == n {
			return Attribute(i), nil
		}
	}
	return 0, fmt.Errorf("dataset: unknown attribute %q", name)
}
