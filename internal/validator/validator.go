// Package validator holds the stateless validation gates applied to every
// inbound payload before it can touch the stores.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rafaeelnunesf/api-bate-papo-uol/internal/domain"
)

// ValidationError carries one entry per failed field so handlers can
// return structured detail with the 422.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}

// Validator checks the shape of inbound payloads. It is stateless and
// safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

// JoinRequest fails unless the payload carries a non-empty name.
func (v *Validator) JoinRequest(req domain.JoinRequest) error {
	return v.check(v.validate.Struct(req))
}

// PostMessageRequest fails unless to and text are non-empty and type is
// exactly "message" or "private_message".
func (v *Validator) PostMessageRequest(req domain.PostMessageRequest) error {
	return v.check(v.validate.Struct(req))
}

// Identity fails unless the caller identity header is a non-empty string.
func (v *Validator) Identity(user string) error {
	if strings.TrimSpace(user) == "" {
		return &ValidationError{Details: []string{"User header is required"}}
	}
	return nil
}

func (v *Validator) check(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Details: []string{err.Error()}}
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, describe(fe))
	}
	return &ValidationError{Details: details}
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
