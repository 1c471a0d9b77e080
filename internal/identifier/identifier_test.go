package identifier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	id := Derive("alice.smith@example.com", "1f3a9c0e-77aa-4bcd-9e01-22334455aabb")
	require.Equal(t, "ALIC", id.Prefix)
	require.Equal(t, "1F3A9C0E", id.Suffix)
	require.Equal(t, "ALIC-1F3A9C0E", id.String())
}

func TestDeriveShortParts(t *testing.T) {
	id := Derive("bo@example.com", "abc")
	require.Equal(t, "BO-ABC", id.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		valid bool
	}{
		{name: "compact layout", input: "ALIC-1F3A9C0E", want: "ALIC-1F3A9C0E", valid: true},
		{name: "grouped layout", input: "ALIC-1F3A-9C0E", want: "ALIC-1F3A9C0E", valid: true},
		{name: "lower case", input: "alic-1f3a9c0e", want: "ALIC-1F3A9C0E", valid: true},
		{name: "surrounding space", input: "  alic-1f3a-9c0e ", want: "ALIC-1F3A9C0E", valid: true},
		{name: "short prefix", input: "ALI-1F3A9C0E", valid: false},
		{name: "short suffix", input: "ALIC-1F3A9C0", valid: false},
		{name: "bad grouping", input: "ALIC-1F3A9-C0E", valid: false},
		{name: "symbols", input: "AL!C-1F3A9C0E", valid: false},
		{name: "empty", input: "", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Parse(tt.input)
			if !tt.valid {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, id.String())
		})
	}
}

func TestParseMatchesDerive(t *testing.T) {
	derived := Derive("carol@example.com", "9a8b7c6d-0000-4000-8000-000000000000")
	parsed, err := Parse("carol-9A8B-7C6D")
	require.NoError(t, err)
	require.Equal(t, derived, parsed)
}
