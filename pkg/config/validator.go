package config

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("http_url_or_empty", validateHTTPURLOrEmpty)
}

// validateHTTPURLOrEmpty accepts an empty value or an absolute http(s) URL.
func validateHTTPURLOrEmpty(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
