package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/backendhub/internal/handler"
	"github.com/zjrosen/backendhub/internal/hub"
	"github.com/zjrosen/backendhub/internal/presentation"
	"github.com/zjrosen/backendhub/internal/resource"
)

var execCmd = &cobra.Command{
	Use:   "exec <name> <operation>",
	Short: "Invoke an operation on a resource",
	Long: `Invoke an operation on the first backend hosting the resource.

Examples:
  backendhub exec runtime:type=Memory gc
  backendhub exec backendhub:type=BackendHandler report`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := resource.Parse(args[0])
		if err != nil {
			return err
		}
		req := handler.ExecRequest{Target: name, Operation: args[1]}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		return withHub(cmd.Context(), func(ctx context.Context, h *hub.Hub) error {
			value, err := h.Dispatch(ctx, handler.Exec{}, req)
			if err != nil {
				return fmt.Errorf("invoking %s on %s: %w", req.Operation, name, err)
			}
			dto := presentation.ReadResultDTO{Target: name.String(), Value: value}
			if jsonOutput {
				return formatter.FormatJSON(dto)
			}
			if text, ok := value.(string); ok {
				return formatter.FormatReport(presentation.ReportDTO{Report: text})
			}
			return formatter.FormatReadResult(dto)
		})
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
