package classifier

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// jsonBlockPattern matches JSON inside markdown code blocks: ```json { ... } ```
	jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// jsonObjectPattern matches the outermost braces (greedy fallback).
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON extracts a JSON object from a model answer, tolerating markdown
// fences, surrounding prose and trailing commas. Trailing commas are only
// repaired when the object is not already valid JSON. It returns "" when no
// object is present.
func ExtractJSON(content string) string {
	raw := ""
	if matches := jsonBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		raw = matches[1]
	} else if match := jsonObjectPattern.FindString(content); match != "" {
		raw = match
	}
	if raw == "" {
		return ""
	}
	raw = strings.TrimSpace(raw)
	if gjson.Valid(raw) {
		return raw
	}
	return trailingCommaPattern.ReplaceAllString(raw, "$1")
}
