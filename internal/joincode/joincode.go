package joincode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Length is the number of characters in a join code.
const Length = 6

// Crockford's base32 alphabet: no i, l, o or u, so codes survive being read
// out loud or typed from a phone screen.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource allows deterministic code generation in tests.
type RandSource interface {
	IntN(n int) int
}

// Generator produces join codes with configurable randomness.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil RandSource falls back to
// crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new join code using crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new join code using the generator's RandSource.
func (g *Generator) Generate() string {
	code := make([]byte, Length)
	if g.randSource != nil {
		for i := range code {
			code[i] = alphabet[g.randSource.IntN(len(alphabet))]
		}
		return string(code)
	}

	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}
	for i, b := range buf {
		code[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(code)
}

// Normalize lowercases a code and maps the characters Crockford's alphabet
// folds together (i→1, l→1, o→0) so user input is forgiving.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	r := strings.NewReplacer("i", "1", "l", "1", "o", "0", "u", "v")
	return r.Replace(code)
}

// Validate checks that a code has the right length and alphabet. Callers are
// expected to Normalize first.
func Validate(code string) error {
	if len(code) != Length {
		return fmt.Errorf("join code must be exactly %d characters, got %d", Length, len(code))
	}
	for i, char := range code {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
