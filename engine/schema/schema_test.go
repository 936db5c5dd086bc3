package schema

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var personSchema = Schema{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{"type": "string"},
		"age":  map[string]any{"type": "integer", "minimum": 0},
	},
	"required": []string{"name"},
}

func TestCompiled_Evaluate(t *testing.T) {
	t.Run("Should accept a conforming value", func(t *testing.T) {
		res, err := NewCompiled(personSchema).Evaluate(map[string]any{"name": "Ada", "age": 36})

		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("Should report violations", func(t *testing.T) {
		res, err := NewCompiled(personSchema).Evaluate(map[string]any{"age": -1})

		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.NotEmpty(t, res.Errors)
	})

	t.Run("Should treat a nil schema as permissive", func(t *testing.T) {
		res, err := NewCompiled(nil).Evaluate("anything")

		require.NoError(t, err)
		assert.True(t, res.Valid)
	})

	t.Run("Should keep the source document", func(t *testing.T) {
		c := NewCompiled(personSchema)
		assert.Equal(t, "object", c.Source()["type"])
		assert.Contains(t, personSchema.String(), `"required":["name"]`)
	})
}

func TestStructValidator(t *testing.T) {
	type item struct {
		Kind string `validate:"kind"`
	}

	t.Run("Should apply registered validations", func(t *testing.T) {
		v := NewStructValidator(&item{Kind: "b"})
		require.NoError(t, v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
			return fl.Field().String() == "a"
		}))

		assert.Error(t, v.Validate(context.Background()))
	})

	t.Run("Should pass valid values", func(t *testing.T) {
		v := NewStructValidator(&item{Kind: "a"})
		require.NoError(t, v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
			return fl.Field().String() == "a"
		}))

		assert.NoError(t, v.Validate(context.Background()))
	})

	t.Run("Should validate other values with the same rules", func(t *testing.T) {
		v := NewStructValidator(nil)
		require.NoError(t, v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
			return fl.Field().String() == "a"
		}))

		assert.NoError(t, v.ValidateStruct(context.Background(), &item{Kind: "a"}))
		assert.Error(t, v.ValidateStruct(context.Background(), &item{Kind: "b"}))
	})
}
