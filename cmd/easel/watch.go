package main

import (
	"fmt"
	"os"

	"github.com/easelhq/easel/internal/cli"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Revalidate module manifests on every change",
	Long: `Watches a manifest directory and reruns validation whenever a manifest
is added, changed or removed. Useful while authoring modules.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if len(args) > 0 {
			cfg.ModulesDir = args[0]
		}

		if err := cli.RunWatch(cli.WatchOptions{Config: cfg}); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
