package guests

import (
	"errors"
	"strings"
)

// ErrUnknownType reports a guest category the domain does not know about.
var ErrUnknownType = errors.New("guests: unknown guest type")

// Type identifies a guest category on a booking request.
type Type string

const (
	Adults   Type = "adults"
	Children Type = "children"
	Infants  Type = "infant"
	Pets     Type = "pets"
)

// Types lists every known guest type in a stable order.
func Types() []Type {
	return []Type{Adults, Children, Infants, Pets}
}

// ParseType resolves a wire name onto a known guest type.
func ParseType(name string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Types() {
		if t == known {
			return t, nil
		}
	}
	return "", ErrUnknownType
}

// Counts maps guest types to how many of each the request brings.
type Counts map[Type]int

func (c Counts) Of(t Type) int {
	return c[t]
}

// Occupancy sums the people-occupying types. Pets do not take a bed and are
// excluded from structural capacity.
func (c Counts) Occupancy() int {
	return c[Adults] + c[Children] + c[Infants]
}

// Limit bounds how many guests of one type a listing accepts.
type Limit struct {
	Min int
	Max int
}

func (l Limit) Allows(count int) bool {
	return count >= l.Min && count <= l.Max
}
