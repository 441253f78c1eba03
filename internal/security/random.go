package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	// InviteCodeLength is fixed: codes are typed by hand, so the alphabet
	// drops visually ambiguous symbols (0/O, 1/I/L).
	InviteCodeLength   = 12
	inviteCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	opaqueTokenLength   = 64
	opaqueTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// InviteCode returns a fresh candidate family invite code. Uniqueness is
// the caller's problem; the store's unique index is the arbiter.
func InviteCode() (string, error) {
	return RandomString(InviteCodeLength, inviteCodeAlphabet)
}

// OpaqueToken returns a high-entropy refresh-token string. The value carries
// no structure; validity is decided entirely by its persisted row.
func OpaqueToken() (string, error) {
	return RandomString(opaqueTokenLength, opaqueTokenAlphabet)
}

// RandomString returns a cryptographically secure, unbiased string of the
// requested length.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}

	return string(value), nil
}
