package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexcellence/jarvis/engine/classifier"
	"github.com/rexcellence/jarvis/engine/taskplan"
	"github.com/rexcellence/jarvis/pkg/config"
)

type staticClassifier struct {
	raw string
	err error
}

func (s staticClassifier) Classify(context.Context, string) (*taskplan.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &taskplan.Candidate{Raw: []byte(s.raw)}, nil
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestRun(t *testing.T) {
	t.Run("Should print the normalized plan", func(t *testing.T) {
		var buf bytes.Buffer
		cl := staticClassifier{raw: `{"natural_reply":"On regarde ça","intent":"audit_360",
			"tasks":[{"agent_type":"audit_360","priority":1,"goal":"audit RenoRex","funnel_stage":["acquisition"]}]}`}

		require.NoError(t, Run(context.Background(), &buf, cl, config.Default(), "Besoin d'un audit", Options{Report: true}))

		out := decode(t, &buf)
		assert.Equal(t, "dispatched", out["state"])
		assert.Equal(t, "On regarde ça", out["reply"])
		plan := out["plan"].(map[string]any)
		assert.Equal(t, "audit_360", plan["intent"])
		assert.Equal(t, []any{"acquisition"}, plan["funnel_focus"])
		assert.Contains(t, out["coercions"], "funnel_focus: missing")
	})

	t.Run("Should print the envelope when requested", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := config.Default()

		require.NoError(t, Run(context.Background(), &buf, staticClassifier{raw: `{}`}, cfg, "salut", Options{Envelope: true, Compact: true}))

		out := decode(t, &buf)
		env := out["envelope"].(map[string]any)
		assert.Equal(t, cfg.Sink.Source, env["source"])
		assert.Equal(t, "salut", env["rawText"])
		assert.NotContains(t, out, "plan")
	})

	t.Run("Should show the degraded path", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, Run(context.Background(), &buf, staticClassifier{err: classifier.ErrUnavailable}, config.Default(), "salut", Options{}))

		out := decode(t, &buf)
		assert.Equal(t, "degraded", out["state"])
		assert.Contains(t, out, "classify_error")
	})
}
