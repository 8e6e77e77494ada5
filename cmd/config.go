package cmd

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/backendhub/internal/config"
)

var (
	configInitPath  string
	configInitForce bool
)

var configInitCmd = &cobra.Command{
	Use:   "config:init",
	Short: "Write a commented default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configInitPath
		if path == "" {
			path = defaultConfigPath
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "config:set <key> <value>",
	Short: "Set the qualifier or an environment entry in the config file",
	Long: `Set a value in the config file in use, keeping its comments.

Supported keys:
  qualifier          appended to the hub resource name
  environment.<key>  forwarded to the detected environment

Examples:
  backendhub config:set qualifier agent=web
  backendhub config:set environment.exclude_backends legacy`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		path := viper.ConfigFileUsed()
		if path == "" {
			path = defaultConfigPath
		}

		switch {
		case key == "qualifier":
			if err := config.SaveQualifier(path, value); err != nil {
				return err
			}
		case strings.HasPrefix(key, "environment.") && len(key) > len("environment."):
			environment := maps.Clone(cfg.Environment)
			if environment == nil {
				environment = map[string]string{}
			}
			environment[strings.TrimPrefix(key, "environment.")] = value
			if err := config.SaveEnvironment(path, environment); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported key %q: use qualifier or environment.<key>", key)
		}

		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", key, path)
		return err
	},
}

func init() {
	configInitCmd.Flags().StringVarP(&configInitPath, "path", "p", "", "where to write (default: "+defaultConfigPath+")")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing file")
	rootCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configSetCmd)
}
