package requests

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"waves-server/internal/domain/user"
)

// SearchQuery is the query string of GET /api/search.
type SearchQuery struct {
	Q     string `form:"q" validate:"required"`
	Limit *int   `form:"limit"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,username"`
	Password    string  `json:"password" validate:"required,min=6"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=64"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateSettingsRequest is the body of PUT /api/settings. Absent fields are
// left untouched.
type UpdateSettingsRequest struct {
	DisplayName *string            `json:"display_name,omitempty" validate:"omitempty,max=64"`
	Wallpaper   *string            `json:"wallpaper,omitempty" validate:"omitempty,max=2048"`
	Settings    map[string]*string `json:"settings,omitempty" validate:"omitempty,dive,keys,required,max=64,endkeys,omitempty,max=4096"`
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question" validate:"required,max=512"`
}

// Normalize trims surrounding whitespace from the question.
func (r *AskRequest) Normalize() {
	r.Question = strings.TrimSpace(r.Question)
}

// NewValidator returns a validator with the request rules registered.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return user.ValidUsername(fl.Field().String())
	})
	return validate
}

// ValidationMessage renders validator errors as one readable line.
func ValidationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		parts = append(parts, describe(fe))
	}
	return strings.Join(parts, "; ")
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "username":
		return "username must be 3-32 characters of letters, digits, '_', '.' or '-'"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
