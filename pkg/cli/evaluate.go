package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dshills/logicflow/pkg/compiler"
	"github.com/dshills/logicflow/pkg/editor"
	"github.com/dshills/logicflow/pkg/evaluation"
	"github.com/dshills/logicflow/pkg/graph"
	"github.com/dshills/logicflow/pkg/logging"
	"github.com/spf13/cobra"
)

// NewEvaluateCommand posts a compiled payload to the evaluation service
func NewEvaluateCommand(opts *Options) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "evaluate [payload.json|-]",
		Short: "Evaluate a compiled graph payload",
		Long: `Send a compiled graph payload to the evaluation service and print the
value of every result node.

The payload is checked against the request schema before it is sent.
With no argument, or "-", the payload is read from stdin.

Examples:
  logicflow evaluate graph.json
  cat graph.json | logicflow evaluate --url http://localhost:9000/evaluate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if err := compiler.ValidatePayload(raw); err != nil {
				return err
			}

			cfg := evaluation.Config{
				URL:     opts.Config.Evaluator.URL,
				Headers: opts.Config.Evaluator.Headers,
				Timeout: opts.Config.Evaluator.Timeout,
			}
			if url != "" {
				cfg.URL = url
			}
			client, err := evaluation.NewClient(cfg)
			if err != nil {
				return err
			}

			logging.Named(opts.Logger, "client").Debug("posting %d bytes to %s", len(raw), cfg.URL)
			results, err := client.EvaluateRaw(cmd.Context(), raw)
			if err != nil {
				return errors.New(evaluation.UserMessage(err))
			}

			printResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Evaluation endpoint (overrides evaluator.url)")
	return cmd
}

func readPayload(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return raw, nil
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return raw, nil
}

func printResults(w io.Writer, results evaluation.Results) {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "No results")
		return
	}

	ids := make([]graph.NodeID, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		_, _ = fmt.Fprintf(w, "%s = %s\n", id, editor.FormatNumber(results[id]))
	}
}
