package taskplan

import (
	"encoding/json"
	"slices"
)

// SchemaVersion identifies the canonical task plan shape. Changes to the
// enumerations below must stay additive.
const SchemaVersion = "taskplan.v1"

const (
	// DefaultReply is sent when the classifier produced no usable reply.
	DefaultReply = "Bien reçu, je m'en occupe."
	// DiagnosticGoal is the goal of the synthesized diagnostic task.
	DiagnosticGoal = "clarify request"
	// DefaultRAGTable is the memory table named in the rag block.
	DefaultRAGTable = "ai_memory"
	// MaxFunnelFocus bounds the length of funnel_focus.
	MaxFunnelFocus = 3
)

// -----------------------------------------------------------------------------
// Enumerations
// -----------------------------------------------------------------------------

type Stage string

const (
	StageAcquisition Stage = "acquisition"
	StageActivation  Stage = "activation"
	StageRetention   Stage = "retention"
	StageReferral    Stage = "referral"
	StageRevenue     Stage = "revenue"
)

// Stages lists the funnel stages in canonical order.
var Stages = []Stage{StageAcquisition, StageActivation, StageRetention, StageReferral, StageRevenue}

func (s Stage) IsValid() bool {
	return slices.Contains(Stages, s)
}

// stageRank returns the canonical position of s, or -1.
func stageRank(s Stage) int {
	return slices.Index(Stages, s)
}

type AgentType string

const (
	AgentAudit360         AgentType = "audit_360"
	AgentGrowthStrategy   AgentType = "growth_strategy"
	AgentScraping         AgentType = "scraping"
	AgentColdEmail        AgentType = "cold_email"
	AgentContent          AgentType = "content"
	AgentFunnel           AgentType = "funnel"
	AgentAutomation       AgentType = "automation"
	AgentDataAnalysis     AgentType = "data_analysis"
	AgentRAGMemory        AgentType = "rag_memory"
	AgentInternalQuestion AgentType = "internal_question"
)

// DiagnosticAgent is the capability used for fallback tasks.
const DiagnosticAgent = AgentAudit360

// AgentTypes is the capability set a task may be routed to.
var AgentTypes = []AgentType{
	AgentAudit360,
	AgentGrowthStrategy,
	AgentScraping,
	AgentColdEmail,
	AgentContent,
	AgentFunnel,
	AgentAutomation,
	AgentDataAnalysis,
	AgentRAGMemory,
	AgentInternalQuestion,
}

func (a AgentType) IsValid() bool {
	return slices.Contains(AgentTypes, a)
}

type Intent string

const IntentInternalQuestion Intent = "internal_question"

// Intents is the set of plan-level intents. Memory writes are a task, never an intent.
var Intents = []Intent{
	Intent(AgentAudit360),
	Intent(AgentGrowthStrategy),
	Intent(AgentScraping),
	Intent(AgentColdEmail),
	Intent(AgentContent),
	Intent(AgentFunnel),
	Intent(AgentAutomation),
	Intent(AgentDataAnalysis),
	IntentInternalQuestion,
}

func (i Intent) IsValid() bool {
	return slices.Contains(Intents, i)
}

type OutputFormat string

const (
	OutputText      OutputFormat = "text"
	OutputMarkdown  OutputFormat = "markdown"
	OutputChecklist OutputFormat = "checklist"
	OutputTable     OutputFormat = "table"
	OutputReport    OutputFormat = "report"
	OutputJSON      OutputFormat = "json"
)

var OutputFormats = []OutputFormat{OutputText, OutputMarkdown, OutputChecklist, OutputTable, OutputReport, OutputJSON}

func (f OutputFormat) IsValid() bool {
	return slices.Contains(OutputFormats, f)
}

const ProjectOther = "autre"

var (
	Projects     = []string{"rexcellence", "renorex", ProjectOther}
	CompanySizes = []string{"freelance", "tpe", "pme", "scaleup", "corp"}
	Markets      = []string{"b2b", "b2c", "both"}
)

// -----------------------------------------------------------------------------
// Plan
// -----------------------------------------------------------------------------

// Company describes who the request is about. Every field is nullable.
type Company struct {
	Name     *string `json:"name"`
	Project  *string `json:"project"`
	Industry *string `json:"industry"`
	Size     *string `json:"size"`
	Geo      *string `json:"geo"`
	B2BB2C   *string `json:"b2b_b2c"`
}

// RAG tells the automation consumer whether the exchange is worth remembering.
type RAG struct {
	ShouldWrite bool     `json:"should_write"`
	Summary     *string  `json:"summary"`
	Tags        []string `json:"tags"`
	Table       string   `json:"table"`
}

type Task struct {
	ID           string         `json:"id"            validate:"required"`
	AgentType    AgentType      `json:"agent_type"    validate:"required,agent_type"`
	Priority     int            `json:"priority"      validate:"min=1"`
	Goal         string         `json:"goal"`
	FunnelStage  []Stage        `json:"funnel_stage"  validate:"min=1,unique,dive,stage"`
	Details      map[string]any `json:"details"       validate:"required"`
	DependsOn    []string       `json:"depends_on"    validate:"required,unique"`
	OutputFormat OutputFormat   `json:"output_format" validate:"output_format"`
}

// TaskPlan is the normalized classifier output handed to delivery.
type TaskPlan struct {
	SchemaVersion string  `json:"schema_version" validate:"required"`
	NaturalReply  string  `json:"natural_reply"  validate:"required"`
	Company       Company `json:"company"`
	Intent        Intent  `json:"intent"         validate:"intent"`
	FunnelFocus   []Stage `json:"funnel_focus"   validate:"min=1,max=3,unique,dive,stage"`
	Tasks         []Task  `json:"tasks"          validate:"min=1,dive"`
	RAG           RAG     `json:"rag"`
}

// Candidate is an unvalidated plan as produced by the classifier.
type Candidate struct {
	Raw json.RawMessage
}

// EmptyCandidate returns a candidate carrying an empty object.
func EmptyCandidate() *Candidate {
	return &Candidate{Raw: json.RawMessage("{}")}
}

// Bytes returns the candidate document, treating nil as an empty object.
func (c *Candidate) Bytes() []byte {
	if c == nil || len(c.Raw) == 0 {
		return []byte("{}")
	}
	return c.Raw
}
