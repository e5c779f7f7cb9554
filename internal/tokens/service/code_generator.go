package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

const (
	digits       = "0123456789"
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
)

// NumericCode returns a random string of exactly length decimal digits, leading zeros
// included.
func NumericCode(length int) (string, error) {
	if err := validateCodeLength(length); err != nil {
		return "", err
	}

	code := make([]byte, length)
	for i := range code {
		c, err := randomChar(digits)
		if err != nil {
			return "", err
		}
		code[i] = c
	}
	return string(code), nil
}

// AlphabeticalCode returns a random string of length letters. Each position is upper or
// lower case with equal probability.
func AlphabeticalCode(length int) (string, error) {
	if err := validateCodeLength(length); err != nil {
		return "", err
	}

	code := make([]byte, length)
	for i := range code {
		c, err := randomLetter()
		if err != nil {
			return "", err
		}
		code[i] = c
	}
	return string(code), nil
}

// AlphanumericCode returns a random string of length characters. Each position is a digit
// or a letter with equal probability.
func AlphanumericCode(length int) (string, error) {
	if err := validateCodeLength(length); err != nil {
		return "", err
	}

	code := make([]byte, length)
	for i := range code {
		isDigit, err := randomInt(2)
		if err != nil {
			return "", err
		}

		var c byte
		if isDigit == 1 {
			c, err = randomChar(digits)
		} else {
			c, err = randomLetter()
		}
		if err != nil {
			return "", err
		}
		code[i] = c
	}
	return string(code), nil
}

// GenerateCode returns a one-time code of length characters drawn from alphabet.
func GenerateCode(alphabet tokensDomain.CodeAlphabet, length int) (string, error) {
	switch alphabet {
	case tokensDomain.Numeric:
		return NumericCode(length)
	case tokensDomain.Alphabetical:
		return AlphabeticalCode(length)
	case tokensDomain.Alphanumeric:
		return AlphanumericCode(length)
	}
	return "", fmt.Errorf("%w: %q", tokensDomain.ErrInvalidCodeAlphabet, alphabet)
}

func validateCodeLength(length int) error {
	if length <= 0 || length > tokensDomain.MaxCodeLength {
		return fmt.Errorf("%w: %d", tokensDomain.ErrInvalidCodeLength, length)
	}
	return nil
}

func randomLetter() (byte, error) {
	upper, err := randomInt(2)
	if err != nil {
		return 0, err
	}
	if upper == 1 {
		return randomChar(upperLetters)
	}
	return randomChar(lowerLetters)
}

func randomChar(alphabet string) (byte, error) {
	n, err := randomInt(int64(len(alphabet)))
	if err != nil {
		return 0, err
	}
	return alphabet[n], nil
}

func randomInt(upper int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(upper))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random number: %w", err)
	}
	return n.Int64(), nil
}
