// Package validator provides struct validation utilities with custom validators.
package validator

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/boardkit/api/pkg/domain/board"
)

// hexColorRegex validates label colors: #rrggbb, lowercase or uppercase.
var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validator wraps the go-playground validator with custom validations.
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range v {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return sb.String()
}

// New creates a new Validator with custom validators registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("board_role", validateBoardRole)
	_ = v.RegisterValidation("link_role", validateLinkRole)
	_ = v.RegisterValidation("card_status", validateCardStatus)
	_ = v.RegisterValidation("board_visibility", validateBoardVisibility)
	_ = v.RegisterValidation("hex_color", validateHexColor)

	return &Validator{validate: v}
}

// Validate validates a struct and returns ValidationErrors if validation fails.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return err
	}

	result := make(ValidationErrors, 0, len(validationErrors))
	for _, e := range validationErrors {
		result = append(result, ValidationError{
			Field:   toSnakeCase(e.Field()),
			Message: formatErrorMessage(e),
		})
	}

	return result
}

// validateBoardRole validates that a string is an assignable membership
// role. Owner is deliberately not assignable: it belongs to the board's
// creator and is never stored or granted.
func validateBoardRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	role, ok := board.ParseRole(value)
	return ok && role.IsMembershipRole()
}

// validateLinkRole validates that a string is a valid invite link role.
func validateLinkRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	_, ok := board.ParseLinkRole(value)
	return ok
}

// validateCardStatus validates that a string is a valid card status.
func validateCardStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	switch board.CardStatus(value) {
	case board.CardStatusDoing, board.CardStatusDone:
		return true
	default:
		return false
	}
}

// validateBoardVisibility validates that a string is a valid board visibility.
func validateBoardVisibility(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	switch board.Visibility(value) {
	case board.VisibilityPrivate, board.VisibilityWorkspace:
		return true
	default:
		return false
	}
}

// validateHexColor validates that a string is a #rrggbb color.
func validateHexColor(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	return hexColorRegex.MatchString(value)
}

// formatErrorMessage converts validation errors to human-readable messages.
func formatErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "board_role":
		return fmt.Sprintf("must be one of: %s", formatMembershipRoles())
	case "link_role":
		return "must be one of: member, admin, observer"
	case "card_status":
		return "must be one of: doing, done"
	case "board_visibility":
		return "must be one of: private, workspace"
	case "hex_color":
		return "must be a hex color (e.g., #0079bf)"
	default:
		return fmt.Sprintf("failed on '%s' validation", e.Tag())
	}
}

// toSnakeCase converts PascalCase/camelCase to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteByte('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}

// formatMembershipRoles returns a comma-separated list of assignable roles.
func formatMembershipRoles() string {
	strs := make([]string, len(board.MembershipRoles))
	for i, r := range board.MembershipRoles {
		strs[i] = string(r)
	}
	return strings.Join(strs, ", ")
}
