// Package random draws the characters of generated product keys.
package random

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Random draws key groups. Tests substitute a queue of fixed groups.
type Random interface {
	// Group returns length characters drawn uniformly from alphabet
	Group(length int, alphabet string) string
}

// Crypto draws from crypto/rand
type Crypto struct{}

// New creates a Crypto source
func New() *Crypto {
	return &Crypto{}
}

// Group returns length characters drawn uniformly from alphabet
func (Crypto) Group(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	n := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(length)
	for range length {
		i, err := rand.Int(rand.Reader, n)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		b.WriteByte(alphabet[i.Int64()])
	}
	return b.String()
}

// Key joins groups drawn from r with dashes, e.g. ABCDE-FGHIJ-KLMNO
func Key(r Random, groups, length int, alphabet string) string {
	parts := make([]string, groups)
	for i := range parts {
		parts[i] = r.Group(length, alphabet)
	}
	return strings.Join(parts, "-")
}
