package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLength(t *testing.T) {
	r := New()

	token, err := r.Token(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Regexp(t, "^[0-9a-f]+$", token)
}

func TestTokenIsUnique(t *testing.T) {
	r := New()

	a, _ := r.Token(32)
	b, _ := r.Token(32)
	assert.NotEqual(t, a, b)
}

func TestTokenNonPositive(t *testing.T) {
	token, err := New().Token(0)
	require.NoError(t, err)
	assert.Empty(t, token)
}
