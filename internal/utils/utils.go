package utils

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// NewPublicID returns an opaque identifier such as "st_3f9c0a7d12be" for
// entities exposed in URLs.
func NewPublicID(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + id[:12]
}

// NewTicketNumber returns a short human readable ticket reference.
func NewTicketNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TKT-" + strings.ToUpper(id[:8])
}

// GenerateNumericCode returns a uniformly random string of n decimal digits.
func GenerateNumericCode(n int) (string, error) {
	var sb strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}
