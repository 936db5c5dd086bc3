package taskplan

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/rexcellence/jarvis/engine/schema"
)

var (
	planValidatorOnce sync.Once
	planValidator     *schema.StructValidator
	planValidatorErr  error
)

// Check verifies that a plan satisfies every plan invariant.
func Check(ctx context.Context, plan *TaskPlan) error {
	v, err := getPlanValidator()
	if err != nil {
		return err
	}
	if err := v.ValidateStruct(ctx, plan); err != nil {
		return fmt.Errorf("task plan invariants violated: %w", err)
	}
	return nil
}

// getPlanValidator builds the shared validator with the enum rules on first use.
func getPlanValidator() (*schema.StructValidator, error) {
	planValidatorOnce.Do(func() {
		v := schema.NewStructValidator(nil)
		for tag, fn := range map[string]validator.Func{
			"stage":         enumValidator(func(s string) bool { return Stage(s).IsValid() }),
			"agent_type":    enumValidator(func(s string) bool { return AgentType(s).IsValid() }),
			"intent":        enumValidator(func(s string) bool { return Intent(s).IsValid() }),
			"output_format": enumValidator(func(s string) bool { return OutputFormat(s).IsValid() }),
		} {
			if err := v.RegisterValidation(tag, fn); err != nil {
				planValidatorErr = fmt.Errorf("failed to register %s validation: %w", tag, err)
				return
			}
		}
		planValidator = v
	})
	return planValidator, planValidatorErr
}

func enumValidator(valid func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	}
}
