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

var listCmd = &cobra.Command{
	Use:   "list [pattern]",
	Short: "List resource names across all backends",
	Long: `List the resource names matching a pattern on every backend. Without a
pattern every name is listed.

Examples:
  backendhub list
  backendhub list 'runtime:*'
  backendhub list '*:type=Memory'
  backendhub list --json | jq '.[].name'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req handler.ListRequest
		if len(args) == 1 {
			pattern, err := resource.Parse(args[0])
			if err != nil {
				return err
			}
			req.Pattern = pattern
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		return withHub(cmd.Context(), func(ctx context.Context, h *hub.Hub) error {
			result, err := h.Dispatch(ctx, handler.List{}, req)
			if err != nil {
				return fmt.Errorf("listing: %w", err)
			}
			listings, _ := result.([]handler.Listing)
			dtos := presentation.FromListings(listings)
			if jsonOutput {
				return formatter.FormatJSON(dtos)
			}
			return formatter.FormatListings(dtos)
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
