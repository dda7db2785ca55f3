package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/onboard"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of onboard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "onboard version %s\n", onboard.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
