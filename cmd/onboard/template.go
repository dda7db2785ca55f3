package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/onboard/internal/presentation/graph"
	"github.com/aretw0/onboard/internal/presentation/tui"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/tutorial"
)

var templateCmd = &cobra.Command{
	Use:   "template [template]",
	Short: "Preview the tutorial message in the terminal",
	Long: `Renders the tutorial message as a new user receives it. Use --complete to
preview it with some steps already checked off, or --mermaid for a diagram.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tmpl, err := tutorial.Load(templatePath(args))
		if err != nil {
			return err
		}

		inst := tmpl.NewInstance()
		complete, _ := cmd.Flags().GetStringSlice("complete")
		for _, name := range complete {
			step := domain.StepName(name)
			if !isStep(step) {
				return fmt.Errorf("unknown step %q (want one of %v)", name, domain.StepNames())
			}
			inst.Complete(step)
		}

		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(inst))
			return nil
		}

		width, _ := cmd.Flags().GetInt("width")
		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		out, err := render(tui.TutorialMarkdown(tutorial.WelcomeText, inst))
		if err != nil {
			return err
		}

		if noBanner, _ := cmd.Flags().GetBool("no-banner"); !noBanner {
			tui.PrintBanner(cmd.OutOrStdout())
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func isStep(step domain.StepName) bool {
	for _, s := range domain.StepNames() {
		if s == step {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.Flags().StringSlice("complete", nil, "Steps to show as completed (reaction, pin, share)")
	templateCmd.Flags().Int("width", 80, "Word wrap width")
	templateCmd.Flags().Bool("no-banner", false, "Do not print the banner")
	templateCmd.Flags().Bool("mermaid", false, "Print a Mermaid flowchart of the tutorial instead")
}
