package random

import (
	"crypto/rand"
	"encoding/hex"
)

// Random produces unguessable tokens and can be replaced in tests
type Random interface {
	// Token returns n random bytes encoded as lowercase hex (2n characters)
	Token(n int) (string, error)
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Token returns n bytes from crypto/rand as hex
func (r *CryptoRandom) Token(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
