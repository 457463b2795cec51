package domain

import (
	"errors"
	"testing"
)

func TestParseGenerationType(t *testing.T) {
	for _, valid := range []string{"component", "styles", "layout"} {
		got, err := ParseGenerationType(valid)
		if err != nil {
			t.Errorf("ParseGenerationType(%q) returned error: %v", valid, err)
		}
		if got.String() != valid {
			t.Errorf("ParseGenerationType(%q) = %q", valid, got)
		}
	}

	for _, invalid := range []string{"", "Component", "page", "component "} {
		_, err := ParseGenerationType(invalid)
		if !errors.Is(err, ErrInvalidGenerationType) {
			t.Errorf("ParseGenerationType(%q): expected ErrInvalidGenerationType, got %v", invalid, err)
		}
	}
}

func TestCategorySet(t *testing.T) {
	set := NewCategorySet([]string{"components", "styles", "layouts", "components"})

	if set.Len() != 3 {
		t.Errorf("expected duplicates collapsed to 3, got %d", set.Len())
	}
	if !set.Contains("styles") {
		t.Error("expected set to contain styles")
	}
	if set.Contains("icons") {
		t.Error("expected set not to contain icons")
	}

	names := set.Names()
	if len(names) != 3 || names[0] != "components" || names[2] != "layouts" {
		t.Errorf("expected declaration order preserved, got %v", names)
	}

	// Names returns a copy; mutating it must not affect the set
	names[0] = "mutated"
	if !set.Contains("components") {
		t.Error("mutating Names() result changed the set")
	}
}
