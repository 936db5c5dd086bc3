package taskplan

import (
	"maps"

	"github.com/rexcellence/jarvis/engine/schema"
)

var compiledSchema = schema.NewCompiled(buildSchema())

// Schema returns the canonical JSON Schema of a task plan.
func Schema() schema.Schema {
	return compiledSchema.Source()
}

func buildSchema() schema.Schema {
	nullableString := map[string]any{"type": []any{"string", "null"}}
	nullableEnum := func(values []string) map[string]any {
		enum := make([]any, 0, len(values)+1)
		for _, v := range values {
			enum = append(enum, v)
		}
		return map[string]any{"type": []any{"string", "null"}, "enum": append(enum, nil)}
	}
	stageList := map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string", "enum": enumOf(Stages)},
		"uniqueItems": true,
	}
	task := map[string]any{
		"type":     "object",
		"required": []any{"agent_type", "priority", "goal", "funnel_stage"},
		"properties": map[string]any{
			"id":           map[string]any{"type": "string"},
			"agent_type":   map[string]any{"type": "string", "enum": enumOf(AgentTypes)},
			"priority":     map[string]any{"type": "integer", "minimum": 1},
			"goal":         map[string]any{"type": "string"},
			"funnel_stage": withMin(stageList, 1),
			"details":      map[string]any{"type": "object"},
			"depends_on": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"output_format": map[string]any{"type": "string", "enum": enumOf(OutputFormats)},
		},
	}
	return schema.Schema{
		"$schema":  "https://json-schema.org/draft/2020-12/schema",
		"$id":      "https://rexcellence.dev/schemas/" + SchemaVersion + ".json",
		"title":    "TaskPlan",
		"type":     "object",
		"required": []any{"natural_reply", "intent", "funnel_focus", "tasks"},
		"properties": map[string]any{
			"schema_version": map[string]any{"type": "string"},
			"natural_reply":  map[string]any{"type": "string", "minLength": 1},
			"company": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":     nullableString,
					"project":  nullableEnum(Projects),
					"industry": nullableString,
					"size":     nullableEnum(CompanySizes),
					"geo":      nullableString,
					"b2b_b2c":  nullableEnum(Markets),
				},
			},
			"intent":       map[string]any{"type": "string", "enum": enumOf(Intents)},
			"funnel_focus": withMax(withMin(stageList, 1), MaxFunnelFocus),
			"tasks": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    task,
			},
			"rag": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"should_write": map[string]any{"type": "boolean"},
					"summary":      nullableString,
					"tags":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"table":        map[string]any{"type": "string"},
				},
			},
		},
	}
}

func enumOf[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func withMin(base map[string]any, n int) map[string]any {
	out := maps.Clone(base)
	out["minItems"] = n
	return out
}

func withMax(base map[string]any, n int) map[string]any {
	out := maps.Clone(base)
	out["maxItems"] = n
	return out
}
