package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/thicket"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of thicket",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("thicket version %s\n", strings.TrimSpace(thicket.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
