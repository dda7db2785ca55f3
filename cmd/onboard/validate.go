package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/tutorial"
)

var validateCmd = &cobra.Command{
	Use:   "validate [template]",
	Short: "Validate a tutorial template",
	Long:  `Parses the template and checks that every tutorial step is present and starts out pending.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := templatePath(args)
		tmpl, err := tutorial.Load(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%d steps: %v)\n", path, len(tmpl.Steps), domain.StepNames())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// templatePath prefers the positional argument over the configured path.
func templatePath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return v.GetString("template_path")
}
