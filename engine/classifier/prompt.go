package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/tidwall/pretty"

	"github.com/rexcellence/jarvis/engine/classifier/prompts"
	"github.com/rexcellence/jarvis/engine/taskplan"
)

var agentDescriptions = map[taskplan.AgentType]string{
	taskplan.AgentAudit360:         "audit complet business + funnel + concurrents",
	taskplan.AgentGrowthStrategy:   "plan d'actions priorisé",
	taskplan.AgentScraping:         "annuaire, webscraper.io, PagesJaunes, Societe.com… low-cost",
	taskplan.AgentColdEmail:        "scripts + séquences Lemlist-ready",
	taskplan.AgentContent:          "LinkedIn, Instagram, TikTok, YouTube, Google Ads, landing pages…",
	taskplan.AgentFunnel:           "pages, tunnel, onboarding, nurturing",
	taskplan.AgentAutomation:       "n8n, Make, Zapier",
	taskplan.AgentDataAnalysis:     "GTM, GA4, Meta Ads, conversions, tracking",
	taskplan.AgentRAGMemory:        "mémoire persistante",
	taskplan.AgentInternalQuestion: "clarification",
}

type agentEntry struct {
	Name        string
	Description string
}

type contractData struct {
	Version       string
	Agents        []agentEntry
	AgentTypes    []string
	Intents       []string
	Stages        []string
	OutputFormats []string
	Projects      []string
	Sizes         []string
	Markets       []string
	MaxFocus      int
	Example       string
}

var (
	contractOnce sync.Once
	contractText string
	contractErr  error
)

// SystemContract returns the instructions sent with every classification.
// It is rendered once from the canonical task plan enumerations.
func SystemContract() (string, error) {
	contractOnce.Do(func() {
		contractText, contractErr = renderContract()
	})
	return contractText, contractErr
}

func renderContract() (string, error) {
	tpl, err := template.New("system_contract.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(prompts.TemplateFS, "templates/system_contract.tmpl")
	if err != nil {
		return "", fmt.Errorf("parse system contract: %w", err)
	}
	example, err := examplePlan()
	if err != nil {
		return "", err
	}
	data := contractData{
		Version:       taskplan.SchemaVersion,
		AgentTypes:    toStrings(taskplan.AgentTypes),
		Intents:       toStrings(taskplan.Intents),
		Stages:        toStrings(taskplan.Stages),
		OutputFormats: toStrings(taskplan.OutputFormats),
		Projects:      taskplan.Projects,
		Sizes:         taskplan.CompanySizes,
		Markets:       taskplan.Markets,
		MaxFocus:      taskplan.MaxFunnelFocus,
		Example:       example,
	}
	for _, a := range taskplan.AgentTypes {
		data.Agents = append(data.Agents, agentEntry{Name: string(a), Description: agentDescriptions[a]})
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render system contract: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// examplePlan renders the output shape the model must follow.
func examplePlan() (string, error) {
	str := func(s string) *string { return &s }
	example := taskplan.TaskPlan{
		NaturalReply: "phrase courte friendly pour Théo",
		Company: taskplan.Company{
			Name:     str("string|null"),
			Project:  str(strings.Join(taskplan.Projects, "|")),
			Industry: str("string|null"),
			Size:     str(strings.Join(taskplan.CompanySizes, "|") + "|null"),
			Geo:      str("string|null"),
			B2BB2C:   str(strings.Join(taskplan.Markets, "|") + "|null"),
		},
		Intent:      taskplan.Intent(taskplan.AgentAudit360),
		FunnelFocus: []taskplan.Stage{taskplan.StageAcquisition},
		Tasks: []taskplan.Task{{
			ID:           "task-1",
			AgentType:    taskplan.AgentAudit360,
			Priority:     1,
			Goal:         "string",
			FunnelStage:  []taskplan.Stage{taskplan.StageAcquisition},
			Details:      map[string]any{},
			DependsOn:    []string{},
			OutputFormat: taskplan.OutputReport,
		}},
		RAG: taskplan.RAG{
			Summary: str("string|null"),
			Tags:    []string{"rexcellence", "audit_360"},
			Table:   taskplan.DefaultRAGTable,
		},
	}
	raw, err := json.Marshal(example)
	if err != nil {
		return "", fmt.Errorf("marshal example plan: %w", err)
	}
	var shape map[string]any
	if err := json.Unmarshal(raw, &shape); err != nil {
		return "", fmt.Errorf("unmarshal example plan: %w", err)
	}
	delete(shape, "schema_version")
	raw, err = json.Marshal(shape)
	if err != nil {
		return "", fmt.Errorf("marshal example plan: %w", err)
	}
	return strings.TrimSpace(string(pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  "}))), nil
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
