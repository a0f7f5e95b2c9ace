package security

import "fmt"

var otpCharset = []rune("0123456789")

// GenerateOTP produces a random numeric passcode of exactly length digits.
// Leading zeros are preserved. The generator is stateless; expiry is tracked
// by the caller against the account record.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	result := make([]rune, length)
	for i := 0; i < length; i++ {
		idx, err := randInt(len(otpCharset))
		if err != nil {
			return "", err
		}
		result[i] = otpCharset[idx]
	}
	return string(result), nil
}
