package utils

import (
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Custom validations
	v.RegisterValidation("platform", validatePlatform)

	return &Validator{
		validate: v,
	}
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

func validatePlatform(fl validator.FieldLevel) bool {
	platform := fl.Field().String()
	supported := map[string]bool{
		"tiktok":    true,
		"instagram": true,
		"youtube":   true,
	}
	return supported[platform]
}
