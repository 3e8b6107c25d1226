package profiles

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sleeplog/internal/credentials"
)

const (
	DefaultHeight = 170
	DefaultWeight = 70
)

type Profile struct {
	CredentialsID credentials.ID `json:"credentials_id"`
	Username      string         `json:"username" validate:"required,min=2,max=100"`
	Email         string         `json:"email" validate:"required,email,max=200"`
	// Height in centimeters
	Height float64 `json:"height" validate:"min=100,max=250"`
	// Weight in kilograms
	Weight    float64 `json:"weight" validate:"min=30,max=300"`
	AvatarURL string  `json:"avatar_url,omitempty" validate:"max=255"`
}

func Default(credentialsID credentials.ID) *Profile {
	return &Profile{
		CredentialsID: credentialsID,
		Height:        DefaultHeight,
		Weight:        DefaultWeight,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (p *Profile) Validate() error {
	return validate.Struct(p)
}

var fieldMessages = map[string]map[string]string{
	"Username": {
		"required": "Name is required",
		"min":      "Name must be at least 2 characters",
		"max":      "Name is too long",
	},
	"Email": {
		"required": "Email is required",
		"email":    "Enter a valid email",
		"max":      "Email is too long",
	},
	"Height": {
		"min": "Height must be at least 100 cm",
		"max": "Height must be at most 250 cm",
	},
	"Weight": {
		"min": "Weight must be at least 30 kg",
		"max": "Weight must be at most 300 kg",
	},
}

// FieldErrors maps a validation error to a message per field. Errors of other
// kinds are returned under the "" key.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		message, ok := fieldMessages[fieldError.Field()][fieldError.Tag()]
		if !ok {
			message = fmt.Sprintf("%s is invalid", fieldError.Field())
		}
		out[fieldError.Field()] = message
	}
	return out
}
