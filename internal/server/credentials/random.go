package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// ResetSecretBytes is the entropy of a reset link token.
const ResetSecretBytes = 32

// VerificationCodeDigits is the length of a manual-entry reset code.
const VerificationCodeDigits = 6

var codeSpace = big.NewInt(1_000_000)

// GenerateResetSecret returns a URL-safe token carrying ResetSecretBytes of
// randomness.
func GenerateResetSecret() (string, error) {
	b := make([]byte, ResetSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateVerificationCode returns a zero-padded 6-digit code drawn
// uniformly from 000000-999999.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return fmt.Sprintf("%0*d", VerificationCodeDigits, n.Int64()), nil
}
