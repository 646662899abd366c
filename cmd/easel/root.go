package main

import (
	"fmt"
	"os"

	"github.com/easelhq/easel/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "easel",
	Short: "Easel binds script-driven surface lifecycles to render runtimes",
	Long: `Easel manages the lifecycle of rendering surfaces: scripts start them,
replace their props wholesale, and stop them, while easel enforces the
lifecycle rules and forwards each operation to a render runtime.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default "+cli.DefaultConfigFile+")")
	rootCmd.PersistentFlags().String("modules", "", "Directory containing module manifests")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig resolves the effective config, letting flags win over file and
// environment.
func loadConfig(cmd *cobra.Command) (*cli.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cli.Load(path)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("modules"); dir != "" {
		cfg.ModulesDir = dir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}
