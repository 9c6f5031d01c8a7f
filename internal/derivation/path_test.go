package derivation_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/tx-signer/internal/derivation"
)

func TestParse(t *testing.T) {
	path, err := derivation.Parse("m/44'/60'/0'/0/0")
	require.NoError(t, err)
	assert.Equal(t, derivation.Path{2147483692, 2147483708, 2147483648, 0, 0}, path)
}

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{
		"m/44'/60'/0'/0/0",
		"m/44'/60'/0'/0/17",
		"m/0",
		"m/2147483647'/2147483647",
	} {
		path, err := derivation.Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, path.String())
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"missing m", "44'/60'/0'/0/0"},
		{"no components", "m"},
		{"empty segment", "m/44'//0"},
		{"non numeric", "m/44'/x/0"},
		{"negative", "m/-1"},
		{"out of range", "m/2147483648"},
		{"double hardened", "m/44''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := derivation.Parse(tt.path)
			assert.True(t, errors.Is(err, derivation.ErrInvalidPath))
		})
	}
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "m/44'/60'/0'/0/0", derivation.DefaultPath(0))
	assert.Equal(t, "m/44'/60'/0'/0/42", derivation.DefaultPath(42))

	// the built path parses back to itself
	path, err := derivation.Parse(derivation.DefaultPath(42))
	require.NoError(t, err)
	assert.Equal(t, "m/44'/60'/0'/0/42", path.String())
}
