package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateVerificationCode generates a random 6-digit verification code
func GenerateVerificationCode() string {
	var b strings.Builder
	for range 6 {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String()
}
