package main

import (
	"fmt"
	"os"

	"github.com/easelhq/easel/internal/cli"
	"github.com/spf13/cobra"
)

// renderHostCmd is the child side of the process render runtime. Parents
// spawn it themselves, so it stays out of the help output.
var renderHostCmd = &cobra.Command{
	Use:    "render-host",
	Short:  "Serve render requests on stdin/stdout",
	Hidden: true,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		if err := cli.RunRenderHost(cli.RenderHostOptions{Config: cfg}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(renderHostCmd)
}
