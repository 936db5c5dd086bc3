package taskplan

import (
	"slices"
	"strconv"
	"strings"
)

// Normalize turns a validated candidate into a TaskPlan that satisfies every
// plan invariant. It is total and deterministic. A nil report is computed
// from the candidate.
func Normalize(c *Candidate, report *ValidationReport) TaskPlan {
	if report == nil {
		report = Validate(c)
	}
	d := report.Draft
	tasks := normalizeTasks(d.Tasks)
	if len(tasks) == 0 {
		tasks = append(tasks, diagnosticTask())
	}
	intent := d.Intent
	if !intent.IsValid() {
		intent = IntentInternalQuestion
		if !slices.ContainsFunc(tasks, func(t Task) bool { return t.AgentType == DiagnosticAgent }) {
			tasks = append(tasks, diagnosticTask())
		}
	}
	assignIDs(tasks)
	linkDependencies(tasks)
	focus := d.FunnelFocus
	if len(focus) == 0 || len(focus) > MaxFunnelFocus {
		focus = FocusFromTasks(tasks)
	}
	reply := strings.TrimSpace(d.NaturalReply)
	if reply == "" {
		reply = DefaultReply
	}
	return TaskPlan{
		SchemaVersion: SchemaVersion,
		NaturalReply:  reply,
		Company:       d.Company,
		Intent:        intent,
		FunnelFocus:   slices.Clone(focus),
		Tasks:         tasks,
		RAG:           normalizeRAG(d.RAG),
	}
}

// DiagnosticPlan is the plan forwarded when no classification is available:
// a single diagnostic task on the acquisition stage.
func DiagnosticPlan(reply string) TaskPlan {
	if strings.TrimSpace(reply) == "" {
		reply = DefaultReply
	}
	tasks := []Task{diagnosticTask()}
	assignIDs(tasks)
	return TaskPlan{
		SchemaVersion: SchemaVersion,
		NaturalReply:  reply,
		Intent:        IntentInternalQuestion,
		FunnelFocus:   []Stage{StageAcquisition},
		Tasks:         tasks,
		RAG:           normalizeRAG(RAG{}),
	}
}

// FocusFromTasks returns the union of the tasks' stages in canonical order,
// capped at MaxFunnelFocus.
func FocusFromTasks(tasks []Task) []Stage {
	var focus []Stage
	for _, s := range Stages {
		if len(focus) == MaxFunnelFocus {
			break
		}
		if slices.ContainsFunc(tasks, func(t Task) bool { return slices.Contains(t.FunnelStage, s) }) {
			focus = append(focus, s)
		}
	}
	if len(focus) == 0 {
		focus = []Stage{StageAcquisition}
	}
	return focus
}

func isDiagnosticTask(t Task) bool {
	return t.AgentType == DiagnosticAgent && t.Goal == DiagnosticGoal
}

func diagnosticTask() Task {
	return Task{
		AgentType:    DiagnosticAgent,
		Goal:         DiagnosticGoal,
		FunnelStage:  []Stage{StageAcquisition},
		Details:      map[string]any{},
		DependsOn:    []string{},
		OutputFormat: OutputText,
	}
}

// normalizeTasks drops tasks routed to unknown capabilities and fills
// defaults on the rest. Missing priorities take the 1-based position.
func normalizeTasks(drafts []DraftTask) []Task {
	tasks := make([]Task, 0, len(drafts))
	for _, d := range drafts {
		if !d.AgentType.IsValid() {
			continue
		}
		t := Task{
			ID:           d.ID,
			AgentType:    d.AgentType,
			Priority:     d.Priority,
			Goal:         strings.TrimSpace(d.Goal),
			FunnelStage:  slices.Clone(d.FunnelStage),
			Details:      d.Details,
			DependsOn:    d.DependsOn,
			OutputFormat: d.OutputFormat,
		}
		if len(t.FunnelStage) == 0 {
			t.FunnelStage = []Stage{StageAcquisition}
		}
		if t.Details == nil {
			t.Details = map[string]any{}
		}
		if !t.OutputFormat.IsValid() {
			t.OutputFormat = OutputText
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// assignIDs keeps unique supplied ids and names the rest task-<position>.
// Priorities left at zero take the position too.
func assignIDs(tasks []Task) {
	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		if id := tasks[i].ID; id != "" && !seen[id] {
			seen[id] = true
			continue
		}
		tasks[i].ID = ""
	}
	for i := range tasks {
		if tasks[i].Priority < 1 {
			tasks[i].Priority = i + 1
		}
		if tasks[i].ID != "" {
			continue
		}
		id := "task-" + strconv.Itoa(i+1)
		for n := 2; seen[id]; n++ {
			id = "task-" + strconv.Itoa(i+1) + "-" + strconv.Itoa(n)
		}
		seen[id] = true
		tasks[i].ID = id
	}
}

// linkDependencies keeps references to other tasks of the plan, once each.
func linkDependencies(tasks []Task) {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}
	for i := range tasks {
		deps := make([]string, 0, len(tasks[i].DependsOn))
		for _, dep := range tasks[i].DependsOn {
			if ids[dep] && dep != tasks[i].ID && !slices.Contains(deps, dep) {
				deps = append(deps, dep)
			}
		}
		tasks[i].DependsOn = deps
	}
}

func normalizeRAG(r RAG) RAG {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if strings.TrimSpace(r.Table) == "" {
		r.Table = DefaultRAGTable
	}
	return r
}
