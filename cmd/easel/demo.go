package main

import (
	"fmt"
	"os"

	"github.com/easelhq/easel/internal/cli"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Drive surfaces from an interactive command loop",
	Long: `Starts an interactive loop that runs lifecycle commands against an
in-process render runtime and draws each surface as a terminal card.

Commands: start <id> <module> [props] [mode], set <id> [props] [mode],
stop <id>, inspect <id>, list, quit.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		jsonMode, _ := cmd.Flags().GetBool("json")
		confirm, _ := cmd.Flags().GetBool("confirm-stops")

		opts := cli.DemoOptions{
			Config:  cfg,
			JSON:    jsonMode,
			Confirm: confirm,
		}
		if err := cli.RunDemo(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().Bool("json", false, "Speak NDJSON on stdin/stdout instead of the interactive UI")
	demoCmd.Flags().Bool("confirm-stops", false, "Ask before executing stop commands")
}
