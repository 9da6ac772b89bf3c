// Package credential produces the password hash the game's authentication
// server compares against. The format is fixed by that server and must not change.
package credential

import (
	"crypto/sha1" //nolint:gosec // required by the game server's auth protocol
	"encoding/hex"
)

// Encode returns hex(SHA1(UPPER(username) + ":" + UPPER(password))).
// Only ASCII letters are upper-cased; other bytes pass through unchanged.
func Encode(username, password string) string {
	sum := sha1.Sum([]byte(asciiUpper(username) + ":" + asciiUpper(password))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
