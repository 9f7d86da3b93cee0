package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

var (
	queryType  string
	queryLimit int
	queryJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a natural-language question against the graph",
	Long: `Retrieves the graph components relevant to the question, assembles
a bounded context block and synthesises a grounded answer. Every query is
recorded in the query log.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryType, "type", "t", "", "restrict retrieval to one component type")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "maximum number of components to retrieve")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	opts := domain.QueryOptions{Limit: queryLimit}
	if queryType != "" {
		parsed, err := domain.ParseComponentType(queryType)
		if err != nil {
			return err
		}
		opts.TypeFilter = parsed
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	answer := a.queryService().Answer(ctx, args[0], opts)

	if queryJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, ref := range answer.Sources {
			cmd.Printf("  - %s\n", ref)
		}
		cmd.Printf("Confidence: %.2f", answer.Confidence)
		if answer.Cached {
			cmd.Print(" (cached)")
		}
		cmd.Println()
	}
	return nil
}
