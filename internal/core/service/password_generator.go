package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	uppercase         = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits            = "0123456789"
	specialCharacters = "@$!%*?&#"
	allAllowed        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789@$!%*?&#"

	tempPasswordLength = 8
)

// GenerateTempPassword returns an 8-character bootstrap password guaranteed
// to contain an uppercase letter, a digit and a special character.
func GenerateTempPassword() (string, error) {
	buf := make([]byte, 0, tempPasswordLength)

	for _, charset := range []string{uppercase, digits, specialCharacters} {
		ch, err := randomChar(charset)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}
	for len(buf) < tempPasswordLength {
		ch, err := randomChar(allAllowed)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	return string(buf), nil
}

// generateCode returns a uniformly random 6-digit numeric code. Codes are
// left-zero-padded, so values 000000 through 999999 are all possible.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func randomChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, fmt.Errorf("generate password: %w", err)
	}
	return charset[n.Int64()], nil
}
