package main

import (
	"fmt"
	"strings"

	"github.com/easelhq/easel"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of easel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("easel version %s\n", strings.TrimSpace(easel.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
