package oauth

import (
	"crypto/rand"
	"fmt"
)

// StateLength is the length of nonces produced by RandomState.
const StateLength = 40

const stateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// StateGenerator produces an unguessable anti-forgery nonce.
type StateGenerator func() (string, error)

// RandomState returns StateLength alphanumeric characters from crypto/rand.
func RandomState() (string, error) {
	// largest multiple of the alphabet size that fits in a byte
	const limit = 256 - 256%len(stateAlphabet)

	out := make([]byte, 0, StateLength)
	buf := make([]byte, StateLength)
	for len(out) < StateLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("oauth: generate state: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, stateAlphabet[int(b)%len(stateAlphabet)])
			if len(out) == StateLength {
				break
			}
		}
	}
	return string(out), nil
}
