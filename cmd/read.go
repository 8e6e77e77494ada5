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

var readCmd = &cobra.Command{
	Use:   "read <name> [attribute]",
	Short: "Read an attribute of a resource",
	Long: `Read one attribute, or all attributes when none is given. The request is
tried on each backend in order until one serves it. A pattern name reads
from every matching resource at once.

Examples:
  backendhub read runtime:type=Memory HeapAlloc
  backendhub read runtime:type=Goroutines
  backendhub read 'runtime:*' Count`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := resource.Parse(args[0])
		if err != nil {
			return err
		}
		req := handler.ReadRequest{Target: name}
		if len(args) == 2 {
			req.Attribute = args[1]
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		return withHub(cmd.Context(), func(ctx context.Context, h *hub.Hub) error {
			value, err := h.Dispatch(ctx, handler.Read{}, req)
			if err != nil {
				return fmt.Errorf("reading %s: %w", name, err)
			}
			dto := presentation.ReadResultDTO{Target: name.String(), Attribute: req.Attribute, Value: value}
			if jsonOutput {
				return formatter.FormatJSON(dto)
			}
			return formatter.FormatReadResult(dto)
		})
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
}
