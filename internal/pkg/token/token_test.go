package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChallenge_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		tok, err := NewChallenge()
		require.NoError(t, err)
		assert.Len(t, tok, ChallengeLength)
		for _, r := range tok {
			assert.True(t, strings.ContainsRune(ChallengeAlphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestNewChallenge_NotRepeated(t *testing.T) {
	a, err := NewChallenge()
	require.NoError(t, err)
	b, err := NewChallenge()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
