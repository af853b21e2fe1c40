package utils_test

import (
	"testing"

	"github.com/robalyx/stylist/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestCompressAllWhitespace(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: " \t\n ", want: ""},
		{name: "inner runs", input: "black   tie\n\nwedding", want: "black tie wedding"},
		{name: "edges", input: "  casual  ", want: "casual"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, utils.CompressAllWhitespace(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", utils.Truncate("short", 10))
	assert.Equal(t, "abcd…", utils.Truncate("abcdefgh", 5))
	assert.Equal(t, "2", utils.Truncate("22°C", 1))
	assert.Equal(t, "22°…", utils.Truncate("22°C clear", 4))
}
