package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/backendhub/internal/hub"
	"github.com/zjrosen/backendhub/internal/presentation"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Show the detected environment and the assembled backends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		return withHub(cmd.Context(), func(_ context.Context, h *hub.Hub) error {
			dto := hubDTO(h)
			if jsonOutput {
				return formatter.FormatJSON(dto)
			}
			if err := formatter.FormatEnvironment(dto.Environment); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout()); err != nil {
				return err
			}
			return formatter.FormatBackends(dto.Backends)
		})
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
