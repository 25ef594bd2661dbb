package main

import (
	"fmt"

	"github.com/aretw0/notehub"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notehub",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "notehub version %s\n", notehub.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
