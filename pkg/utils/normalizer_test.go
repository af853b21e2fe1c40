package utils_test

import (
	"testing"

	"github.com/robalyx/stylist/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestFieldNormalizer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantNorm string
	}{
		{name: "empty", input: "", wantNorm: ""},
		{name: "spacing", input: "  garden   party ", wantNorm: "garden party"},
		{name: "fullwidth letters", input: "ｆｏｒｍａｌ", wantNorm: "formal"},
		{name: "newlines", input: "black\ntie\tevent", wantNorm: "black tie event"},
		{name: "case kept", input: "MALE", wantNorm: "MALE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := utils.NewFieldNormalizer()
			assert.Equal(t, tt.wantNorm, n.Normalize(tt.input))
		})
	}
}
