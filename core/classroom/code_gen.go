package classroom

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

// codeAlphabet excludes visually ambiguous characters (O and 0).
const (
	codeAlphabet      = "ABCDEFGHIJKLMNPQRSTUVWXYZ123456789"
	DefaultCodeLength = 6

	maxCodeAttempts = 20
)

// ErrCodeExhausted is returned when code generation hits the retry cap.
var ErrCodeExhausted = errors.New("could not generate a unique classroom code")

// GenerateUniqueCode draws random codes until one passes the existence check.
// A full code is redrawn on every collision; after maxCodeAttempts collisions
// it fails fast with ErrCodeExhausted instead of looping forever.
func GenerateUniqueCode(exists func(code string) (bool, error), length int) (string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode(length)
		if err != nil {
			return "", errors.Wrap(err, "drawing random code")
		}
		found, err := exists(code)
		if err != nil {
			return "", errors.Wrap(err, "checking code uniqueness")
		}
		if !found {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

func randomCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
