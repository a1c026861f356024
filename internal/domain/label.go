package domain

import (
	"fmt"
	"strings"
)

// Label is a task category from a closed set.
type Label string

const (
	LabelWork     Label = "work"
	LabelPersonal Label = "personal"
	LabelPriority Label = "priority"
	LabelShopping Label = "shopping"
	LabelHome     Label = "home"
)

// DefaultLabel is assigned when no usable classification exists.
const DefaultLabel = LabelPersonal

// Labels lists the allowed labels in prompt order.
var Labels = []Label{LabelWork, LabelPersonal, LabelPriority, LabelShopping, LabelHome}

// Valid reports whether l is a member of the closed set.
func (l Label) Valid() bool {
	switch l {
	case LabelWork, LabelPersonal, LabelPriority, LabelShopping, LabelHome:
		return true
	}
	return false
}

// ParseLabel trims and lower-cases s and checks it against the set.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: unknown label %q", ErrInvalidInput, s)
	}
	return l, nil
}

// CoerceLabel is ParseLabel with a DefaultLabel fallback.
func CoerceLabel(s string) Label {
	l, err := ParseLabel(s)
	if err != nil {
		return DefaultLabel
	}
	return l
}

// LabelPtr returns a pointer to l.
func LabelPtr(l Label) *Label {
	return &l
}
