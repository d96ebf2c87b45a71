// internal/room/code.go
package room

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// CodeLength is the number of characters in a join code.
	CodeLength = 6
	// CodeAlphabet leaves out 0/O and 1/I so codes survive being read aloud.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// maxCodeAttempts bounds the collision retry loop in CreateRoom.
	maxCodeAttempts = 10
)

// GenerateCode returns a random join code drawn from CodeAlphabet.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(CodeAlphabet)))
	b := make([]byte, CodeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}
		b[i] = CodeAlphabet[n.Int64()]
	}
	return string(b), nil
}
