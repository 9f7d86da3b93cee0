package cli

import (
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List components flagged for human review",
	Long: `Lists every component whose analysis confidence fell below the
review threshold, or whose business purpose came back empty.`,
	Args: cobra.NoArgs,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	comps, err := a.graph.ListComponents(ctx)
	if err != nil {
		return err
	}

	flagged := 0
	for _, comp := range comps {
		if !comp.Review {
			continue
		}
		flagged++
		cmd.Printf("  %s (confidence %.1f, provider %s)\n", comp.Ref(), comp.Confidence, comp.Provider)
	}
	if flagged == 0 {
		cmd.Println("No components are flagged for review.")
		return nil
	}
	cmd.Printf("\n%d of %d components flagged.\n", flagged, len(comps))
	return nil
}
