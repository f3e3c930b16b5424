package handlers

import (
	"net/mail"
	"strings"

	"github.com/dom/uptask-server/internal/domain"
	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	// bcrypt only reads the first 72 bytes.
	maxPasswordLength = 72
)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.Validationf("%s is required", field)
	}
	return nil
}

func validEmail(value string) error {
	if err := required("email", value); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil || addr.Name != "" {
		return domain.Validationf("invalid email")
	}
	return nil
}

// validNewPassword checks length and that the confirmation matches.
func validNewPassword(password, confirmation string) error {
	if len(password) < minPasswordLength {
		return domain.Validationf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return domain.Validationf("password must be at most %d bytes", maxPasswordLength)
	}
	if password != confirmation {
		return domain.Validationf("passwords do not match")
	}
	return nil
}

func validID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, domain.Validationf("invalid %s", field)
	}
	return id, nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
