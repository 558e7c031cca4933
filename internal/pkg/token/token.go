package token

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ChallengeAlphabet is the character set of QR-tier challenge tokens.
const ChallengeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ChallengeLength is the fixed token length members type back.
const ChallengeLength = 8

// NewChallenge generates a random 8-character uppercase alphanumeric token.
func NewChallenge() (string, error) {
	t, err := gonanoid.Generate(ChallengeAlphabet, ChallengeLength)
	if err != nil {
		return "", fmt.Errorf("generate challenge token: %w", err)
	}
	return t, nil
}
