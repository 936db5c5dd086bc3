package schema

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// -----------------------------------------------------------------------------
// StructValidator
// -----------------------------------------------------------------------------

type StructValidator struct {
	validate *validator.Validate
	value    any
}

func NewStructValidator(value any) *StructValidator {
	return &StructValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		value:    value,
	}
}

func (v *StructValidator) Validate(ctx context.Context) error {
	return v.ValidateStruct(ctx, v.value)
}

// ValidateStruct validates value with the registered rules. Once every
// validation is registered it is safe for concurrent use.
func (v *StructValidator) ValidateStruct(ctx context.Context, value any) error {
	return v.validate.StructCtx(ctx, value)
}

func (v *StructValidator) RegisterValidation(tag string, fn validator.Func) error {
	return v.validate.RegisterValidation(tag, fn)
}
