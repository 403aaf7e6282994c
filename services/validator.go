package services

import (
	"chat-poll/domain"
	"chat-poll/errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func ValidateRegister(cmd domain.RegisterCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}

func ValidatePostMessage(cmd domain.PostMessageCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return nil
}

// normalizeName strips surrounding blanks so that "  " counts as a missing name.
func normalizeName(name string) string {
	return strings.TrimSpace(name)
}
