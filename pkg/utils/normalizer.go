package utils

import (
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldNormalizer cleans free-text form fields before they reach validation.
// This is not safe for concurrent use.
type FieldNormalizer struct {
	transformer transform.Transformer
}

// NewFieldNormalizer creates a new FieldNormalizer instance.
func NewFieldNormalizer() *FieldNormalizer {
	return &FieldNormalizer{
		transformer: norm.NFKC,
	}
}

// Normalize composes compatibility characters and collapses whitespace.
// Returns an empty string if normalization fails or input is blank.
func (n *FieldNormalizer) Normalize(s string) string {
	s = CompressAllWhitespace(s)
	if s == "" {
		return ""
	}

	result, _, err := transform.String(n.transformer, s)
	if err != nil {
		return ""
	}

	return result
}
