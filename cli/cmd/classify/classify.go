package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/rexcellence/jarvis/cli/cmd"
	"github.com/rexcellence/jarvis/engine/classifier"
	"github.com/rexcellence/jarvis/engine/delivery"
	"github.com/rexcellence/jarvis/engine/orchestrator"
	"github.com/rexcellence/jarvis/engine/taskplan"
	"github.com/rexcellence/jarvis/pkg/config"
)

// NewClassifyCommand runs one message through classification and
// normalization and prints what would be delivered. Nothing is sent.
func NewClassifyCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "classify <text>",
		Short: "Classify a message and print the resulting task plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(cobraCmd, handleClassify, args,
				cmd.FlagBinding{Flag: "model", Path: "classifier.model"},
				cmd.FlagBinding{Flag: "timeout", Path: "classifier.timeout"},
			)
		},
	}
	c.Flags().String("model", "", "Override the classifier model")
	c.Flags().Duration("timeout", 0, "Override the classifier timeout")
	c.Flags().Bool("envelope", false, "Print the full sink envelope instead of the plan")
	c.Flags().Bool("report", false, "Print the fields that were coerced")
	c.Flags().Bool("compact", false, "Print compact JSON")
	return c
}

func handleClassify(ctx context.Context, cobraCmd *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	cfg := executor.Config()
	adapter, err := classifier.New(&cfg.Classifier)
	if err != nil {
		return fmt.Errorf("failed to create classifier: %w", err)
	}
	defer func() { _ = adapter.Close() }()
	opts, err := readOptions(cobraCmd)
	if err != nil {
		return err
	}
	return Run(ctx, cobraCmd.OutOrStdout(), adapter, cfg, strings.Join(args, " "), opts)
}

// Options controls what Run prints.
type Options struct {
	Envelope bool
	Report   bool
	Compact  bool
}

func readOptions(cobraCmd *cobra.Command) (Options, error) {
	var opts Options
	var err error
	if opts.Envelope, err = cobraCmd.Flags().GetBool("envelope"); err != nil {
		return opts, err
	}
	if opts.Report, err = cobraCmd.Flags().GetBool("report"); err != nil {
		return opts, err
	}
	if opts.Compact, err = cobraCmd.Flags().GetBool("compact"); err != nil {
		return opts, err
	}
	return opts, nil
}

// Run classifies text with cl through the regular pipeline, capturing the
// deliveries instead of sending them, and writes the result to w.
func Run(ctx context.Context, w io.Writer, cl orchestrator.Classifier, cfg *config.Config, text string, opts Options) error {
	capture := &capturingDeliverer{}
	coord := orchestrator.NewCoordinator(cl, capture, orchestrator.WithSource(cfg.Sink.Source))
	out := coord.Handle(ctx, orchestrator.InboundMessage{RawText: text})
	result := map[string]any{
		"state": out.State,
		"reply": out.Reply,
	}
	if opts.Envelope {
		result["envelope"] = capture.envelope
	} else {
		result["plan"] = out.Plan
	}
	if out.ClassifyErr != nil {
		result["classify_error"] = out.ClassifyErr.Error()
	}
	if opts.Report {
		result["coercions"] = coercionLines(out.Coercions)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if !opts.Compact {
		data = pretty.PrettyOptions(data, &pretty.Options{Width: 100, Indent: "  ", SortKeys: true})
	} else {
		data = append(pretty.Ugly(data), '\n')
	}
	_, err = w.Write(data)
	return err
}

func coercionLines(fields []taskplan.FieldReport) []string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s: %s", f.Path, f.Issue))
	}
	return lines
}

type capturingDeliverer struct {
	mu       sync.Mutex
	envelope delivery.Envelope
}

func (*capturingDeliverer) ReplyToSender(context.Context, int64, string) error {
	return nil
}

func (d *capturingDeliverer) ForwardToSink(_ context.Context, env delivery.Envelope) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.envelope = env
	return nil
}
