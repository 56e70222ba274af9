package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID returns an identifier of the form "<prefix>_<suffix>" where
// the suffix is `length` characters drawn from [0-9a-z] using crypto/rand.
func GenerateSecureID(prefix string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid id length: %d", length)
	}

	suffix := make([]byte, length)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		suffix[i] = idAlphabet[n.Int64()]
	}

	return prefix + "_" + string(suffix), nil
}

// ValidateIDFormat reports whether id looks like "<expectedPrefix>_<suffix>"
// with a non-empty suffix drawn from [0-9a-z].
func ValidateIDFormat(id, expectedPrefix string) bool {
	if !strings.HasPrefix(id, expectedPrefix+"_") {
		return false
	}

	suffix := id[len(expectedPrefix)+1:]
	if suffix == "" {
		return false
	}

	for _, char := range suffix {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}
