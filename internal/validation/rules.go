// Package validation provides jellydator/validation rules shared by the HTTP DTOs and the CLI.
package validation

import (
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/signum/internal/errors"
	tokensDomain "github.com/allisson/signum/internal/tokens/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Identifier validates a canonical, non-nil UUID string.
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		id, err := uuid.Parse(s)
		return err == nil && id != uuid.Nil && len(s) == 36
	},
	validation.NewError("validation_identifier", "must be a valid UUID"),
)

// TokenClass validates one of the known token classes.
var TokenClass = validation.NewStringRuleWithError(
	func(s string) bool {
		return tokensDomain.TokenClass(s).Validate() == nil
	},
	validation.NewError("validation_token_class", "must be one of AUTHENTICATION, REFRESH, TEMPORARY"),
)

// TokenFormat validates one of the known token formats.
var TokenFormat = validation.NewStringRuleWithError(
	func(s string) bool {
		return tokensDomain.TokenFormat(s).Validate() == nil
	},
	validation.NewError("validation_token_format", "must be one of ENCODED_CLAIMS, OPAQUE_HASH"),
)
