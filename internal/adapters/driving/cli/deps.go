package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/metagraph/internal/core/domain"
)

var (
	depsDepth int
	depsJSON  bool
)

var depsCmd = &cobra.Command{
	Use:   "deps [type:name]",
	Short: "Show the dependency neighborhood of a component",
	Long: `Prints every component and relationship within the given number of
hops of a component, e.g. "flow:Account_Assign_Owner".`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func init() {
	depsCmd.Flags().IntVarP(&depsDepth, "depth", "d", 1, "neighborhood depth in hops")
	depsCmd.Flags().BoolVar(&depsJSON, "json", false, "output the subgraph as JSON")
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
	ref, err := domain.ParseComponentRef(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	graph, err := a.queryService().Dependencies(ctx, ref, depsDepth)
	if err != nil {
		return err
	}

	if depsJSON {
		data, err := json.MarshalIndent(graph, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal subgraph: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(graph.Nodes) == 0 {
		cmd.Println("No components found.")
		return nil
	}

	cmd.Printf("Components (%d):\n", len(graph.Nodes))
	for _, node := range graph.Nodes {
		flag := ""
		if node.Review {
			flag = " [review]"
		}
		cmd.Printf("  %s (risk %s, complexity %s)%s\n", node.Ref(), node.Risk, node.Complexity, flag)
	}

	if len(graph.Edges) > 0 {
		cmd.Printf("\nRelationships (%d):\n", len(graph.Edges))
		for _, edge := range graph.Edges {
			cmd.Printf("  %s -%s-> %s (%.1f, %s)\n",
				edge.Source, edge.Kind, edge.Target, edge.Confidence, edge.Provenance)
		}
	}
	return nil
}
