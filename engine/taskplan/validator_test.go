package taskplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(raw string) *Candidate {
	return &Candidate{Raw: []byte(raw)}
}

func fieldReport(t *testing.T, r *ValidationReport, path string) FieldReport {
	t.Helper()
	for _, f := range r.Fields {
		if f.Path == path {
			return f
		}
	}
	require.FailNow(t, "field not reported", path)
	return FieldReport{}
}

func TestValidate(t *testing.T) {
	t.Run("Should accept a conforming candidate", func(t *testing.T) {
		report := Validate(candidate(`{
			"natural_reply": "On regarde ça",
			"intent": "audit_360",
			"funnel_focus": ["acquisition"],
			"tasks": [{"agent_type": "audit_360", "priority": 1, "goal": "audit RenoRex", "funnel_stage": ["acquisition"]}]
		}`))

		assert.True(t, report.Conforms)
		assert.Empty(t, report.SchemaErrors)
		assert.Empty(t, report.Coercions())
		assert.Equal(t, SchemaVersion, report.SchemaVersion)
		require.Len(t, report.Draft.Tasks, 1)
		assert.Equal(t, AgentAudit360, report.Draft.Tasks[0].AgentType)
	})

	t.Run("Should treat a non-object candidate as empty", func(t *testing.T) {
		report := Validate(candidate(`Voici ton plan !`))

		assert.False(t, report.Conforms)
		assert.False(t, fieldReport(t, report, "$").Conforms)
		assert.Empty(t, report.Draft.Tasks)
		assert.Empty(t, report.Draft.Intent)
	})

	t.Run("Should tolerate a nil candidate", func(t *testing.T) {
		report := Validate(nil)

		assert.False(t, report.Conforms)
		assert.Empty(t, report.Draft.NaturalReply)
	})

	t.Run("Should ignore unknown keys", func(t *testing.T) {
		report := Validate(candidate(`{"natural_reply": "ok", "mood": "great", "tasks": []}`))

		for _, f := range report.Fields {
			assert.NotContains(t, f.Path, "mood")
		}
		assert.Equal(t, "ok", report.Draft.NaturalReply)
	})

	t.Run("Should wrap a string where a stage list is expected", func(t *testing.T) {
		report := Validate(candidate(`{"funnel_focus": "revenue", "tasks": [{"agent_type": "content", "funnel_stage": "retention"}]}`))

		assert.Equal(t, []Stage{StageRevenue}, report.Draft.FunnelFocus)
		assert.Equal(t, []Stage{StageRetention}, report.Draft.Tasks[0].FunnelStage)
		assert.Equal(t, "expected list, got string", fieldReport(t, report, "funnel_focus").Issue)
	})

	t.Run("Should wrap a single task object", func(t *testing.T) {
		report := Validate(candidate(`{"tasks": {"agent_type": "scraping", "goal": "annuaire"}}`))

		require.Len(t, report.Draft.Tasks, 1)
		assert.Equal(t, AgentScraping, report.Draft.Tasks[0].AgentType)
		assert.False(t, fieldReport(t, report, "tasks").Conforms)
	})

	t.Run("Should drop unknown stage tokens and invalidate the focus", func(t *testing.T) {
		report := Validate(candidate(`{
			"funnel_focus": ["acquisition", "awareness"],
			"tasks": [{"agent_type": "funnel", "funnel_stage": ["awareness", "activation", "activation"]}]
		}`))

		assert.Nil(t, report.Draft.FunnelFocus)
		assert.Equal(t, []Stage{StageActivation}, report.Draft.Tasks[0].FunnelStage)
		assert.Equal(t, "unknown or duplicate stage dropped", fieldReport(t, report, "tasks.0.funnel_stage").Issue)
	})

	t.Run("Should invalidate a focus longer than three stages", func(t *testing.T) {
		report := Validate(candidate(`{"funnel_focus": ["acquisition","activation","retention","referral","revenue"]}`))

		assert.Nil(t, report.Draft.FunnelFocus)
		assert.False(t, fieldReport(t, report, "funnel_focus").Conforms)
	})

	t.Run("Should coerce scalar types", func(t *testing.T) {
		report := Validate(candidate(`{
			"natural_reply": 42,
			"company": {"name": 7, "project": "RenoRex", "size": "huge", "b2b_b2c": "b2b", "geo": "  ", "industry": ["btp"]},
			"tasks": [{"id": 3, "agent_type": "cold_email", "priority": "2", "goal": true, "details": "none", "depends_on": "1"}]
		}`))

		d := report.Draft
		assert.Equal(t, "42", d.NaturalReply)
		require.NotNil(t, d.Company.Name)
		assert.Equal(t, "7", *d.Company.Name)
		require.NotNil(t, d.Company.Project)
		assert.Equal(t, "renorex", *d.Company.Project)
		assert.Nil(t, d.Company.Size)
		require.NotNil(t, d.Company.B2BB2C)
		assert.Equal(t, "b2b", *d.Company.B2BB2C)
		assert.Nil(t, d.Company.Geo)
		assert.Nil(t, d.Company.Industry)
		task := d.Tasks[0]
		assert.Equal(t, "3", task.ID)
		assert.Equal(t, 2, task.Priority)
		assert.Equal(t, "true", task.Goal)
		assert.Equal(t, map[string]any{}, task.Details)
		assert.Equal(t, []string{"1"}, task.DependsOn)
	})

	t.Run("Should map an unknown project to autre", func(t *testing.T) {
		report := Validate(candidate(`{"company": {"project": "acme"}}`))

		require.NotNil(t, report.Draft.Company.Project)
		assert.Equal(t, ProjectOther, *report.Draft.Company.Project)
	})

	t.Run("Should reject non-positive and fractional priorities", func(t *testing.T) {
		report := Validate(candidate(`{"tasks": [
			{"agent_type": "content", "priority": 0},
			{"agent_type": "content", "priority": 1.5},
			{"agent_type": "content", "priority": -3}
		]}`))

		for _, task := range report.Draft.Tasks {
			assert.Zero(t, task.Priority)
		}
	})

	t.Run("Should flag unknown intents and agent types", func(t *testing.T) {
		report := Validate(candidate(`{"intent": "world_domination", "tasks": [{"agent_type": "video_editing"}]}`))

		assert.Empty(t, report.Draft.Intent)
		assert.Empty(t, report.Draft.Tasks[0].AgentType)
		assert.Equal(t, IntentInternalQuestion, fieldReport(t, report, "intent").Coerced)
		assert.False(t, fieldReport(t, report, "tasks.0.agent_type").Conforms)
	})

	t.Run("Should read the rag block with defaults", func(t *testing.T) {
		report := Validate(candidate(`{"rag": {"should_write": true, "tags": "rexcellence", "summary": null}}`))

		assert.True(t, report.Draft.RAG.ShouldWrite)
		assert.Equal(t, []string{"rexcellence"}, report.Draft.RAG.Tags)
		assert.Nil(t, report.Draft.RAG.Summary)
		assert.Equal(t, DefaultRAGTable, report.Draft.RAG.Table)
	})
}

func TestSchema(t *testing.T) {
	t.Run("Should describe every enumerated capability", func(t *testing.T) {
		s := Schema()

		assert.Equal(t, "TaskPlan", s["title"])
		assert.Contains(t, s.String(), `"rag_memory"`)
		assert.Contains(t, s.String(), `"internal_question"`)
		assert.Contains(t, s.String(), SchemaVersion)
	})
}
