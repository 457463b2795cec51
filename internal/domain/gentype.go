package domain

import "fmt"

// GenerationType selects what the generative model is asked to produce and
// which instructional template frames the retrieved examples. The set is
// closed; ParseGenerationType is the only way in from external input.
type GenerationType string

const (
	GenerateComponent GenerationType = "component"
	GenerateStyles    GenerationType = "styles"
	GenerateLayout    GenerationType = "layout"
)

// GenerationTypes lists all valid generation types in declaration order.
func GenerationTypes() []GenerationType {
	return []GenerationType{GenerateComponent, GenerateStyles, GenerateLayout}
}

// ParseGenerationType validates external input against the closed set.
func ParseGenerationType(s string) (GenerationType, error) {
	switch t := GenerationType(s); t {
	case GenerateComponent, GenerateStyles, GenerateLayout:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGenerationType, s)
}

func (t GenerationType) String() string {
	return string(t)
}
