package style

import (
	"errors"
	"strings"
)

// ErrUnknownGender indicates a gender value outside the supported set.
var ErrUnknownGender = errors.New("unknown gender")

// Gender is the styling target selected on the form.
type Gender string

// Supported genders.
const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// Genders lists the supported genders in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderNeutral}

// ParseGender parses a gender case-insensitively.
func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Genders {
		if g == known {
			return g, nil
		}
	}
	return "", ErrUnknownGender
}

// Label returns the display form used in prompts, e.g. "Female".
func (g Gender) Label() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}
