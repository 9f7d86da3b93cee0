package cli

import (
	"github.com/spf13/cobra"

	logfile "github.com/custodia-labs/metagraph/internal/adapters/driven/querylog/file"
	"github.com/custodia-labs/metagraph/internal/core/services"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the query log",
	Long:  `Reads the local query log and prints aggregate usage statistics.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// runStats reads the query log directly; it needs neither the graph store
// nor a model provider.
func runStats(cmd *cobra.Command, args []string) error {
	queryLog, err := logfile.NewLog("")
	if err != nil {
		return err
	}
	defer queryLog.Close()

	records, err := queryLog.List(cmd.Context())
	if err != nil {
		return err
	}

	stats := services.Summarize(records)
	cmd.Printf("Queries:          %d\n", stats.Total)
	cmd.Printf("Success rate:     %.0f%%\n", stats.SuccessRate()*100)
	cmd.Printf("Cache hit rate:   %.0f%%\n", stats.CacheHitRate()*100)
	cmd.Printf("Mean retrieval:   %.0f ms\n", stats.MeanRetrievalMillis)
	cmd.Printf("Mean synthesis:   %.0f ms\n", stats.MeanSynthesisMillis)
	return nil
}
