package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// -----------------------------------------------------------------------------
// Schema
// -----------------------------------------------------------------------------

type Schema map[string]any

// Result is the outcome of evaluating a value against a Schema.
type Result struct {
	Valid  bool
	Errors []string
}

func (s Schema) String() string {
	bytes, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(bytes)
}

func (s Schema) Compile() (*jsonschema.Schema, error) {
	if s == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	compiled, err := jsonschema.NewCompiler().Compile(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}

// Compiled is a Schema compiled once and shared by concurrent evaluations.
type Compiled struct {
	source Schema
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// NewCompiled wraps s for lazy, one-time compilation.
func NewCompiled(s Schema) *Compiled {
	return &Compiled{source: s}
}

// Source returns the uncompiled schema document.
func (c *Compiled) Source() Schema {
	return c.source
}

// Evaluate validates a decoded JSON value (maps, slices, scalars).
func (c *Compiled) Evaluate(value any) (*Result, error) {
	c.once.Do(func() {
		c.schema, c.err = c.source.Compile()
	})
	if c.err != nil {
		return nil, c.err
	}
	if c.schema == nil {
		return &Result{Valid: true}, nil
	}
	res := c.schema.Validate(value)
	out := &Result{Valid: res.Valid}
	for key, evalErr := range res.Errors {
		out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", key, evalErr))
	}
	sort.Strings(out.Errors)
	return out, nil
}
