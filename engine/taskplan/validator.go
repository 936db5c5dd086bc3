package taskplan

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// FieldReport records whether one field of a candidate conforms and, when it
// does not, how it was coerced.
type FieldReport struct {
	Path     string `json:"path"`
	Conforms bool   `json:"conforms"`
	Issue    string `json:"issue,omitempty"`
	Coerced  any    `json:"coerced,omitempty"`
}

// ValidationReport is the result of Validate.
type ValidationReport struct {
	SchemaVersion string        `json:"schema_version"`
	Conforms      bool          `json:"conforms"`
	SchemaErrors  []string      `json:"schema_errors,omitempty"`
	Fields        []FieldReport `json:"fields"`
	Draft         Draft         `json:"-"`
}

// Coercions returns the reports of non-conforming fields.
func (r *ValidationReport) Coercions() []FieldReport {
	if r == nil {
		return nil
	}
	var out []FieldReport
	for _, f := range r.Fields {
		if !f.Conforms {
			out = append(out, f)
		}
	}
	return out
}

// Draft is a candidate after type coercion. Enumerated fields that did not
// match their set are left empty for the normalizer to repair.
type Draft struct {
	NaturalReply string
	Company      Company
	Intent       Intent
	FunnelFocus  []Stage
	Tasks        []DraftTask
	RAG          RAG
}

type DraftTask struct {
	ID           string
	AgentType    AgentType
	Priority     int
	Goal         string
	FunnelStage  []Stage
	Details      map[string]any
	DependsOn    []string
	OutputFormat OutputFormat
}

// Validate checks a candidate against the canonical schema and computes the
// coerced value of every known field. Unknown keys are ignored. It never fails.
//
// Container rules: a string where a list is expected (funnel_focus,
// funnel_stage, depends_on, rag.tags) is wrapped into a one-element list; an
// object where tasks is expected is wrapped likewise; any other mismatch
// yields an empty list or object. Free-text scalars accept numbers and
// booleans as strings; other types become null.
func Validate(c *Candidate) *ValidationReport {
	v := &validation{report: &ValidationReport{SchemaVersion: SchemaVersion}}
	raw := c.Bytes()
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		v.fail("$", "candidate is not a JSON object", map[string]any{})
		raw = []byte("{}")
	}
	doc := gjson.ParseBytes(raw)
	v.checkSchema(doc)
	draft := &v.report.Draft
	draft.NaturalReply = v.text(doc.Get("natural_reply"), "natural_reply")
	draft.Company = v.company(doc.Get("company"))
	draft.Intent = v.intent(doc.Get("intent"))
	draft.FunnelFocus = v.funnelFocus(doc.Get("funnel_focus"))
	draft.Tasks = v.tasks(doc.Get("tasks"))
	draft.RAG = v.rag(doc.Get("rag"))
	return v.report
}

type validation struct {
	report *ValidationReport
}

func (v *validation) checkSchema(doc gjson.Result) {
	res, err := compiledSchema.Evaluate(doc.Value())
	if err != nil {
		v.report.SchemaErrors = []string{err.Error()}
		return
	}
	v.report.Conforms = res.Valid
	v.report.SchemaErrors = res.Errors
}

func (v *validation) ok(path string) {
	v.report.Fields = append(v.report.Fields, FieldReport{Path: path, Conforms: true})
}

func (v *validation) fail(path, issue string, coerced any) {
	v.report.Fields = append(v.report.Fields, FieldReport{Path: path, Issue: issue, Coerced: coerced})
}

// text coerces a free-text field. Missing and null values are reported as
// non-conforming and yield "".
func (v *validation) text(r gjson.Result, path string) string {
	switch r.Type {
	case gjson.String:
		v.ok(path)
		return r.Str
	case gjson.Number, gjson.True, gjson.False:
		s := r.String()
		v.fail(path, fmt.Sprintf("expected string, got %s", typeName(r)), s)
		return s
	case gjson.Null:
		if !r.Exists() {
			v.fail(path, "missing", nil)
		} else {
			v.fail(path, "null", nil)
		}
		return ""
	default:
		v.fail(path, "expected string, got container", nil)
		return ""
	}
}

// nullableText coerces an optional free-text field. Null is conforming.
func (v *validation) nullableText(r gjson.Result, path string) *string {
	switch r.Type {
	case gjson.Null:
		v.ok(path)
		return nil
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if s == "" {
			v.fail(path, "blank", nil)
			return nil
		}
		v.ok(path)
		return &s
	case gjson.Number, gjson.True, gjson.False:
		s := r.String()
		v.fail(path, fmt.Sprintf("expected string, got %s", typeName(r)), s)
		return &s
	default:
		v.fail(path, "expected string, got container", nil)
		return nil
	}
}

// nullableEnum coerces an optional enumerated field. Unknown values become
// fallback, which may be nil.
func (v *validation) nullableEnum(r gjson.Result, path string, values []string, fallback *string) *string {
	if r.Type == gjson.Null {
		v.ok(path)
		return nil
	}
	if r.Type != gjson.String {
		v.fail(path, fmt.Sprintf("expected string, got %s", typeName(r)), nil)
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(r.Str))
	if s == "" || s == "null" {
		v.fail(path, "blank", nil)
		return nil
	}
	if !slices.Contains(values, s) {
		v.fail(path, fmt.Sprintf("unknown value %q", r.Str), fallback)
		return fallback
	}
	if s != r.Str {
		v.fail(path, "not canonical", s)
	} else {
		v.ok(path)
	}
	return &s
}

func (v *validation) company(r gjson.Result) Company {
	if !r.IsObject() {
		if r.Exists() && r.Type != gjson.Null {
			v.fail("company", fmt.Sprintf("expected object, got %s", typeName(r)), map[string]any{})
		} else {
			v.ok("company")
		}
		return Company{}
	}
	other := ProjectOther
	return Company{
		Name:     v.nullableText(r.Get("name"), "company.name"),
		Project:  v.nullableEnum(r.Get("project"), "company.project", Projects, &other),
		Industry: v.nullableText(r.Get("industry"), "company.industry"),
		Size:     v.nullableEnum(r.Get("size"), "company.size", CompanySizes, nil),
		Geo:      v.nullableText(r.Get("geo"), "company.geo"),
		B2BB2C:   v.nullableEnum(r.Get("b2b_b2c"), "company.b2b_b2c", Markets, nil),
	}
}

func (v *validation) intent(r gjson.Result) Intent {
	if r.Type != gjson.String {
		v.fail("intent", fmt.Sprintf("expected string, got %s", typeName(r)), IntentInternalQuestion)
		return ""
	}
	intent := Intent(strings.TrimSpace(r.Str))
	if !intent.IsValid() {
		v.fail("intent", fmt.Sprintf("unknown intent %q", r.Str), IntentInternalQuestion)
		return ""
	}
	v.ok("intent")
	return intent
}

// list returns the elements of a list field, wrapping a lone string.
func (v *validation) list(r gjson.Result, path string) ([]gjson.Result, bool) {
	switch {
	case r.IsArray():
		return r.Array(), true
	case r.Type == gjson.String:
		v.fail(path, "expected list, got string", []string{r.Str})
		return []gjson.Result{r}, false
	case !r.Exists() || r.Type == gjson.Null:
		v.fail(path, "missing", []string{})
		return nil, false
	default:
		v.fail(path, fmt.Sprintf("expected list, got %s", typeName(r)), []string{})
		return nil, false
	}
}

// stages keeps known stage tokens in input order, dropping unknown tokens and
// duplicates. clean is false when anything was dropped.
func stages(items []gjson.Result) (out []Stage, clean bool) {
	clean = true
	for _, item := range items {
		s := Stage(strings.ToLower(strings.TrimSpace(item.String())))
		if item.Type != gjson.String || !s.IsValid() || slices.Contains(out, s) {
			clean = false
			continue
		}
		out = append(out, s)
	}
	return out, clean
}

// funnelFocus returns nil when the supplied focus is unusable as given.
func (v *validation) funnelFocus(r gjson.Result) []Stage {
	items, isList := v.list(r, "funnel_focus")
	if len(items) == 0 {
		if isList {
			v.fail("funnel_focus", "empty", nil)
		}
		return nil
	}
	focus, clean := stages(items)
	switch {
	case !clean:
		v.fail("funnel_focus", "unknown or duplicate stage", nil)
		return nil
	case len(focus) > MaxFunnelFocus:
		v.fail("funnel_focus", fmt.Sprintf("more than %d stages", MaxFunnelFocus), nil)
		return nil
	case isList:
		v.ok("funnel_focus")
	}
	return focus
}

func (v *validation) tasks(r gjson.Result) []DraftTask {
	var items []gjson.Result
	switch {
	case r.IsArray():
		items = r.Array()
		v.ok("tasks")
	case r.IsObject():
		v.fail("tasks", "expected list, got object", "wrapped")
		items = []gjson.Result{r}
	case !r.Exists() || r.Type == gjson.Null:
		v.fail("tasks", "missing", []any{})
	default:
		v.fail("tasks", fmt.Sprintf("expected list, got %s", typeName(r)), []any{})
	}
	out := make([]DraftTask, 0, len(items))
	for i, item := range items {
		path := "tasks." + strconv.Itoa(i)
		if !item.IsObject() {
			v.fail(path, fmt.Sprintf("expected object, got %s", typeName(item)), nil)
			continue
		}
		out = append(out, v.task(item, path))
	}
	return out
}

func (v *validation) task(r gjson.Result, path string) DraftTask {
	t := DraftTask{
		ID:        v.taskID(r.Get("id"), path+".id"),
		AgentType: AgentType(strings.TrimSpace(r.Get("agent_type").String())),
		Priority:  v.priority(r.Get("priority"), path+".priority"),
		Goal:      v.text(r.Get("goal"), path+".goal"),
		Details:   v.details(r.Get("details"), path+".details"),
		DependsOn: v.dependsOn(r.Get("depends_on"), path+".depends_on"),
	}
	if t.AgentType.IsValid() {
		v.ok(path + ".agent_type")
	} else {
		v.fail(path+".agent_type", fmt.Sprintf("unknown agent type %q", r.Get("agent_type").String()), nil)
		t.AgentType = ""
	}
	items, isList := v.list(r.Get("funnel_stage"), path+".funnel_stage")
	stagePath := path + ".funnel_stage"
	var clean bool
	t.FunnelStage, clean = stages(items)
	switch {
	case len(items) == 0 && isList:
		v.fail(stagePath, "empty", nil)
	case !clean:
		v.fail(stagePath, "unknown or duplicate stage dropped", t.FunnelStage)
	case isList:
		v.ok(stagePath)
	}
	if f := r.Get("output_format"); f.Exists() && f.Type != gjson.Null {
		t.OutputFormat = OutputFormat(strings.ToLower(strings.TrimSpace(f.String())))
		if f.Type != gjson.String || !t.OutputFormat.IsValid() {
			v.fail(path+".output_format", fmt.Sprintf("unknown output format %q", f.String()), OutputText)
			t.OutputFormat = ""
		}
	}
	return t
}

func (v *validation) taskID(r gjson.Result, path string) string {
	switch r.Type {
	case gjson.String:
		return strings.TrimSpace(r.Str)
	case gjson.Number:
		v.fail(path, "expected string, got number", r.String())
		return r.String()
	case gjson.Null:
		return ""
	default:
		v.fail(path, fmt.Sprintf("expected string, got %s", typeName(r)), nil)
		return ""
	}
}

// priority returns 0 when no positive integer can be read.
func (v *validation) priority(r gjson.Result, path string) int {
	var n float64
	switch r.Type {
	case gjson.Number:
		n = r.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			v.fail(path, fmt.Sprintf("not a number: %q", r.Str), nil)
			return 0
		}
		n = parsed
	default:
		v.fail(path, fmt.Sprintf("expected integer, got %s", typeName(r)), nil)
		return 0
	}
	if n < 1 || n != math.Trunc(n) || n > math.MaxInt32 {
		v.fail(path, fmt.Sprintf("not a positive integer: %s", r.String()), nil)
		return 0
	}
	if r.Type != gjson.Number {
		v.fail(path, "expected integer, got string", int(n))
	} else {
		v.ok(path)
	}
	return int(n)
}

func (v *validation) details(r gjson.Result, path string) map[string]any {
	if !r.IsObject() {
		if r.Exists() && r.Type != gjson.Null {
			v.fail(path, fmt.Sprintf("expected object, got %s", typeName(r)), map[string]any{})
		}
		return map[string]any{}
	}
	m, ok := r.Value().(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

func (v *validation) dependsOn(r gjson.Result, path string) []string {
	if !r.Exists() || r.Type == gjson.Null {
		return []string{}
	}
	items, _ := v.list(r, path)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String && item.Type != gjson.Number {
			v.fail(path, fmt.Sprintf("dropped %s dependency", typeName(item)), nil)
			continue
		}
		if id := strings.TrimSpace(item.String()); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func (v *validation) rag(r gjson.Result) RAG {
	out := RAG{Tags: []string{}, Table: DefaultRAGTable}
	if !r.IsObject() {
		if r.Exists() && r.Type != gjson.Null {
			v.fail("rag", fmt.Sprintf("expected object, got %s", typeName(r)), nil)
		}
		return out
	}
	switch w := r.Get("should_write"); w.Type {
	case gjson.True, gjson.False:
		out.ShouldWrite = w.Bool()
	case gjson.Null:
	default:
		v.fail("rag.should_write", fmt.Sprintf("expected boolean, got %s", typeName(w)), false)
	}
	out.Summary = v.nullableText(r.Get("summary"), "rag.summary")
	if tags := r.Get("tags"); tags.Exists() && tags.Type != gjson.Null {
		items, _ := v.list(tags, "rag.tags")
		for _, item := range items {
			if tag := strings.TrimSpace(item.String()); tag != "" && item.Type == gjson.String && !slices.Contains(out.Tags, tag) {
				out.Tags = append(out.Tags, tag)
			}
		}
	}
	if table := r.Get("table"); table.Type == gjson.String && strings.TrimSpace(table.Str) != "" {
		out.Table = strings.TrimSpace(table.Str)
	}
	return out
}

func typeName(r gjson.Result) string {
	switch {
	case !r.Exists():
		return "nothing"
	case r.IsArray():
		return "list"
	case r.IsObject():
		return "object"
	case r.Type == gjson.True || r.Type == gjson.False:
		return "boolean"
	default:
		return strings.ToLower(r.Type.String())
	}
}
