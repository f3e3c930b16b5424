package auth

import (
	"errors"

	"github.com/dom/uptask-server/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong rejects passwords bcrypt would refuse to hash.
var ErrPasswordTooLong = domain.Validationf("password must be at most 72 bytes")

// HashPassword returns a salted bcrypt hash. Hashing the same password twice
// yields different strings, so hashes must only be checked with CheckPassword.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
