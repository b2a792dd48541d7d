package utils

import (
	"crypto/rand"
	"encoding/base32"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const DefaultOTPLength = 6

// GenerateOTPCode returns a numeric one-time code of the given length. The
// code is derived through HOTP from a throwaway random secret, so every digit
// comes from a cryptographic source. Digits may repeat within one code.
func GenerateOTPCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultOTPLength
	}
	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret)
	return hotp.GenerateCodeCustom(encoded, 0, hotp.ValidateOpts{
		Digits:    otp.Digits(length),
		Algorithm: otp.AlgorithmSHA1,
	})
}
