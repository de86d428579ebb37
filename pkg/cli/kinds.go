package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dshills/logicflow/pkg/graph"
	"github.com/spf13/cobra"
)

// NewKindsCommand lists the registered node kinds
func NewKindsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List node kinds with their ports and default data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "KIND\tNAME\tINPUTS\tOUTPUTS\tDEFAULTS")

			for _, spec := range graph.DefaultRegistry().Specs() {
				defaults, err := encodeDefaults(spec.DefaultData())
				if err != nil {
					return fmt.Errorf("encoding %s defaults: %w", spec.Kind, err)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					spec.Kind,
					spec.DisplayName,
					joinHandles(spec.InputPorts),
					joinHandles(spec.OutputPorts),
					defaults)
			}
			return w.Flush()
		},
	}
}

func joinHandles(handles []graph.HandleID) string {
	if len(handles) == 0 {
		return "-"
	}
	parts := make([]string, len(handles))
	for i, h := range handles {
		parts[i] = string(h)
	}
	return strings.Join(parts, ",")
}

// encodeDefaults renders data as compact JSON, leaving comparison operators unescaped
func encodeDefaults(data graph.Data) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
