package tone

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		custom   string
		want     string
		err      error
	}{
		{name: "predefined", selected: "Funny", want: "Funny"},
		{name: "predefined ignores custom text", selected: "Luxury", custom: "noir", want: "Luxury"},
		{name: "empty selection uses default", want: "Casual"},
		{name: "custom text", selected: Custom, custom: "  film noir ", want: "film noir"},
		{name: "custom empty", selected: Custom, err: ErrEmptyTone},
		{name: "custom whitespace", selected: Custom, custom: " \t\n ", err: ErrEmptyTone},
		{name: "free text selection", selected: " deadpan ", want: "deadpan"},
		{name: "whitespace selection", selected: "   ", err: ErrEmptyTone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.selected, tt.custom)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Resolve(%q, %q) error = %v, want %v", tt.selected, tt.custom, err, tt.err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.selected, tt.custom, got, tt.want)
			}
		})
	}
}

func TestPredefined(t *testing.T) {
	if len(Predefined) != 16 {
		t.Fatalf("got %d predefined tones, want 16", len(Predefined))
	}
	if IsPredefined(Custom) {
		t.Error("custom option must not be a predefined tone")
	}
	for _, tone := range Predefined {
		got, err := Resolve(tone, "")
		if err != nil || got != tone {
			t.Errorf("Resolve(%q) = %q, %v", tone, got, err)
		}
	}
}
