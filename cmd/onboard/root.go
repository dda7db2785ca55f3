package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/onboard/internal/config"
)

// v holds configuration shared by every subcommand.
var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Onboard is a tutorial bot for new workspace members",
	Long: `Onboard welcomes users who join a workspace with a three step tutorial
(react, pin, share) and checks each step off as they complete it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		return config.ReadFile(v, path)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (YAML or JSON)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json)")
	flags.String("template", "welcome.json", "Tutorial template file")

	mustBind("log.level", flags.Lookup("log-level"))
	mustBind("log.format", flags.Lookup("log-format"))
	mustBind("template_path", flags.Lookup("template"))
}
