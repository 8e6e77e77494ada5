package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/backendhub/internal/hub"
	"github.com/zjrosen/backendhub/internal/log"
	"github.com/zjrosen/backendhub/internal/presentation"
	"github.com/zjrosen/backendhub/internal/watcher"
)

var infoWatch bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the backend inventory report",
	Long: `Print every backend in dispatch order with its domains and resource names,
followed by the platform backend.

With --watch the report is printed again, from a freshly assembled hub,
whenever the config file changes.

Examples:
  backendhub info
  backendhub info --watch
  backendhub info --json | jq '.backends[].id'`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVarP(&infoWatch, "watch", "w", false, "print again when the config file changes")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, _ []string) error {
	if err := printInfo(cmd); err != nil || !infoWatch {
		return err
	}

	path := viper.ConfigFileUsed()
	if path == "" {
		return errors.New("--watch needs a config file (see config:init)")
	}
	w, err := watcher.New(path, watcher.DefaultDebounce)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return w.Watch(ctx, func() {
		log.Info(log.CatConfig, "config changed, reloading", "path", path)
		loadConfig()
		if err := printInfo(cmd); err != nil {
			log.ErrorErr(log.CatConfig, "reload failed", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	})
}

func printInfo(cmd *cobra.Command) error {
	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	return withHub(cmd.Context(), func(ctx context.Context, h *hub.Hub) error {
		if jsonOutput {
			return formatter.FormatJSON(hubDTO(h))
		}
		return formatter.FormatReport(presentation.ReportDTO{Report: h.Report(ctx)})
	})
}

func hubDTO(h *hub.Hub) presentation.HubDTO {
	return presentation.HubDTO{
		Name:          h.ObjectName(),
		Environment:   presentation.FromEnvironment(h.Environment()),
		Backends:      presentation.FromBackends(h.Backends()),
		Registrations: presentation.FromRegistrations(h.Registrations()),
	}
}
