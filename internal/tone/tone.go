package tone

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

// Custom is the selection value meaning "use the free text instead".
const Custom = "custom-tone-option"

var ErrEmptyTone = errors.New("tone must not be empty")

// Predefined is the order tones are offered in; the first is the default.
var Predefined = []string{
	"Casual", "Funny", "Professional", "Inspirational", "Enthusiastic", "Sarcastic",
	"Informative", "Friendly", "Luxury", "Minimalist", "Playful", "Motivational",
	"Whimsical", "Serious", "Empathetic", "Authoritative",
}

func Default() string {
	return Predefined[0]
}

func IsPredefined(tone string) bool {
	return lo.Contains(Predefined, tone)
}

// Resolve returns the tone to send to the model for a selection and the
// accompanying custom text.
func Resolve(selected, custom string) (string, error) {
	switch {
	case selected == "":
		return Default(), nil
	case selected == Custom:
		return nonEmpty(custom)
	case IsPredefined(selected):
		return selected, nil
	default:
		return nonEmpty(selected)
	}
}

func nonEmpty(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTone
	}
	return s, nil
}
