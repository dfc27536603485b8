package security

import (
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	// PasswordAlphabet omits characters that are easy to misread (0/O, 1/l/I).
	PasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	SecretAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	MinTemporaryPasswordLength = 8
	SecretKeyLength            = 48
)

var (
	errNegativeLength   = errors.New("length must be non-negative")
	errEmptyAlphabet    = errors.New("alphabet must not be empty")
	errAlphabetTooLarge = errors.New("alphabet must not exceed 256 characters")
)

// RandomString draws length characters uniformly from alphabet using
// crypto/rand. Bytes that would bias the distribution are rejected.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", errNegativeLength
	case length == 0:
		return "", nil
	case len(alphabet) == 0:
		return "", errEmptyAlphabet
	case len(alphabet) > 256:
		return "", errAlphabetTooLarge
	}

	size := len(alphabet)
	ceiling := 256 - 256%size
	out := make([]byte, 0, length)
	buffer := make([]byte, length+length/2+1)
	for len(out) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buffer {
			if int(b) >= ceiling {
				continue
			}
			out = append(out, alphabet[int(b)%size])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

func TemporaryPassword(length int) (string, error) {
	if length < MinTemporaryPasswordLength {
		length = MinTemporaryPasswordLength
	}
	return RandomString(length, PasswordAlphabet)
}

// SecretKey returns a value suitable for server.secret_key.
func SecretKey() (string, error) {
	return RandomString(SecretKeyLength, SecretAlphabet)
}
