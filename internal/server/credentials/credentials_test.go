package credentials

import (
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	digest, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd", digest)

	assert.True(t, h.Verify("Passw0rd", digest))
	assert.False(t, h.Verify("passw0rd", digest))
	assert.False(t, h.Verify("Passw0rd", "not-a-digest"))
	assert.False(t, h.Verify("Passw0rd", ""))

	again, err := h.Hash("Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, digest, again, "digests are salted")
}

func TestNewHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
	assert.Equal(t, 11, NewHasher(11).cost)
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"Password1", nil},
		{"Passw0rd", nil},
		{"Pass1", ErrPasswordTooShort},
		{"abcdefg1", ErrPasswordNoUppercase},
		{"abcdefgh", ErrPasswordNoUppercase},
		{"password1", ErrPasswordNoUppercase},
		{"ABCDEFGH", ErrPasswordNoLowercase},
		{"PASSWORD1", ErrPasswordNoLowercase},
		{"Password", ErrPasswordNoDigit},
		{"", ErrPasswordTooShort},
		{"ab", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidatePinFormat(t *testing.T) {
	accepted := []string{"0000", "1234", "12345", "123456", "000000"}
	for _, pin := range accepted {
		assert.NoError(t, ValidatePinFormat(pin), pin)
	}

	rejected := map[string]error{
		"123":     ErrPinLengthOutOfBounds,
		"1234567": ErrPinLengthOutOfBounds,
		"":        ErrPinLengthOutOfBounds,
		"12a4":    ErrPinNotNumeric,
		"12-34":   ErrPinNotNumeric,
		"abcd":    ErrPinNotNumeric,
		"١٢٣٤":    ErrPinNotNumeric,
		"12 34":   ErrPinNotNumeric,
	}
	for pin, want := range rejected {
		assert.ErrorIs(t, ValidatePinFormat(pin), want, pin)
	}
}

func TestGenerateResetSecret(t *testing.T) {
	a, err := GenerateResetSecret()
	require.NoError(t, err)
	b, err := GenerateResetSecret()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[A-Za-z0-9_-]+$`, a)

	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, ResetSecretBytes)
}

func TestGenerateVerificationCode(t *testing.T) {
	re := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 200; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.True(t, re.MatchString(code), code)
	}
}
