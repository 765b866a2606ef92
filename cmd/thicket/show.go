package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/presentation/graph"
	"github.com/aretw0/thicket/internal/presentation/tui"
)

// showCmd renders a materialized tree or its dependency graph in the
// terminal.
var showCmd = &cobra.Command{
	Use:   "show <project-id> <tree-id>",
	Short: "Render a computed tree in the terminal",
	Long: `Materializes a tree against its project's selected configuration and
renders it. Nodes whose condition did not hold are struck through.

Formats:
- tree (default): styled markdown outline of the computed tree
- mermaid: Mermaid flowchart source for the computed tree
- dag: styled markdown outline of the downward cross-tree graph
- dag-mermaid: Mermaid flowchart source for the cross-tree graph`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		projectID, treeID := args[0], args[1]
		format, _ := cmd.Flags().GetString("format")
		tenant, _ := cmd.Flags().GetString("tenant")

		logger := buildLogger(cmd)
		stores, closer, err := buildStores(cmd, logger)
		if err != nil {
			fmt.Printf("Error initializing storage: %v\n", err)
			os.Exit(1)
		}
		defer closer.Close()

		engine, err := thicket.New(thicket.WithStores(stores), thicket.WithLogger(logger))
		if err != nil {
			fmt.Printf("Error initializing thicket: %v\n", err)
			os.Exit(1)
		}

		ctx := cmd.Context()

		switch format {
		case "tree", "dag":
			var markdown string
			if format == "tree" {
				computed, err := engine.Materialize(ctx, tenant, projectID, treeID)
				if err != nil {
					fmt.Printf("Error computing tree: %v\n", err)
					os.Exit(1)
				}
				markdown = tui.TreeMarkdown(computed)
			} else {
				dag, err := engine.Dag(ctx, tenant, projectID, treeID)
				if err != nil {
					fmt.Printf("Error resolving dag: %v\n", err)
					os.Exit(1)
				}
				markdown = tui.DagMarkdown(*dag)
			}

			render := tui.NewRenderer()
			out, err := render(markdown)
			if err != nil {
				// Fall back to the raw markdown on dumb terminals.
				out = markdown
			}
			fmt.Print(out)

		case "mermaid":
			computed, err := engine.Materialize(ctx, tenant, projectID, treeID)
			if err != nil {
				fmt.Printf("Error computing tree: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(graph.GenerateMermaid(computed))

		case "dag-mermaid":
			dag, err := engine.Dag(ctx, tenant, projectID, treeID)
			if err != nil {
				fmt.Printf("Error resolving dag: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(graph.GenerateDagMermaid(*dag))

		default:
			fmt.Printf("Unknown format: %s. Supported: tree, mermaid, dag, dag-mermaid\n", format)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringP("format", "o", "tree", "Output format: tree, mermaid, dag or dag-mermaid")
}
