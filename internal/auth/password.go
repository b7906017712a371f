package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// recoveryCharset deliberately omits O and 0: recovery codes get read over
// the phone and typed from paper.
const recoveryCharset = "ABCDEFGHIJKLMNPQRSTUVWXYZ123456789"

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateRecoveryCode returns a code in the form XXXX-XXXX-XXXX. The code is
// shown to the parent exactly once at registration; only its hash is stored.
// Each character is drawn with rand.Int so the charset is sampled uniformly.
func GenerateRecoveryCode() (string, error) {
	charsetLen := big.NewInt(int64(len(recoveryCharset)))

	var b strings.Builder
	for i := 0; i < 12; i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("generate recovery code: %w", err)
		}
		b.WriteByte(recoveryCharset[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeRecoveryCode uppercases and strips separators and whitespace, so
// codes compare equal however the user typed them.
func NormalizeRecoveryCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "-", "")
	code = strings.ReplaceAll(code, " ", "")
	return code
}

// HashRecoveryCode hashes the normalized form of a recovery code.
func HashRecoveryCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(NormalizeRecoveryCode(code)), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash recovery code: %w", err)
	}
	return string(hash), nil
}

// CheckRecoveryCode compares a stored hash against a user-supplied code.
func CheckRecoveryCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(NormalizeRecoveryCode(code))) == nil
}
