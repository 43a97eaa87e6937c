package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrEmailDomainNotAllowed = errors.New("email domain not allowed")

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckEmailDomain verifies that email belongs to allowedDomain.
func CheckEmailDomain(email, allowedDomain string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: malformed address", ErrEmailDomainNotAllowed)
	}
	if !strings.EqualFold(email[at+1:], allowedDomain) {
		return fmt.Errorf("%w: only %s email addresses are allowed", ErrEmailDomainNotAllowed, allowedDomain)
	}
	return nil
}
