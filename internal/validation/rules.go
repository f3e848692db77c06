// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/vitaldiary/entryvault/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PassphraseStrength validates that a passphrase meets minimum requirements.
// Length is the primary defense; character-class rules are optional because
// long diceware-style passphrases are stronger than short complex ones.
type PassphraseStrength struct {
	MinLength     int
	RequireLetter bool
	RequireDigit  bool
}

// Validate checks if the passphrase meets the configured requirements.
func (p PassphraseStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_passphrase_type", "passphrase must be a string")
	}

	if len(s) < p.MinLength {
		return validation.NewError(
			"validation_passphrase_min_length",
			fmt.Sprintf("passphrase must be at least %d characters", p.MinLength),
		)
	}

	if p.RequireLetter && !containsClass(s, unicode.IsLetter) {
		return validation.NewError(
			"validation_passphrase_letter",
			"passphrase must contain at least one letter",
		)
	}

	if p.RequireDigit && !containsClass(s, unicode.IsDigit) {
		return validation.NewError(
			"validation_passphrase_digit",
			"passphrase must contain at least one digit",
		)
	}

	return nil
}

func containsClass(s string, class func(rune) bool) bool {
	for _, r := range s {
		if class(r) {
			return true
		}
	}
	return false
}
