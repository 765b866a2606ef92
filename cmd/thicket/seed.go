package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/validator"
	"github.com/aretw0/thicket/pkg/domain"
)

// seedFile is the YAML shape the seed command consumes.
type seedFile struct {
	Projects []seedProject `yaml:"projects"`
}

type seedProject struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Configs     []seedConfig `yaml:"configs"`
	Trees       []seedTree   `yaml:"trees"`
}

type seedConfig struct {
	Name       string         `yaml:"name"`
	Selected   bool           `yaml:"selected"`
	Attributes map[string]any `yaml:"attributes"`
}

type seedTree struct {
	Title      string        `yaml:"title"`
	RootNodeID string        `yaml:"rootNodeId"`
	Nodes      []domain.Node `yaml:"nodes"`
}

// seedCmd loads a YAML model into the configured store.
var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load projects, configurations and trees from a YAML file",
	Long: `Reads a YAML description of projects with their configurations and
trees, and writes it into the configured store. Tree writes go through
the normal update path, so every seeded tree starts with one history
entry and can be edited and undone afterwards.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := buildLogger(cmd)
		tenant, _ := cmd.Flags().GetString("tenant")

		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading seed file: %v\n", err)
			os.Exit(1)
		}

		var seed seedFile
		if err := yaml.Unmarshal(data, &seed); err != nil {
			fmt.Printf("Error parsing seed file: %v\n", err)
			os.Exit(1)
		}

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
		for _, p := range seed.Projects {
			if err := seedOneProject(ctx, engine, tenant, p); err != nil {
				fmt.Printf("Error seeding project %q: %v\n", p.Title, err)
				os.Exit(1)
			}
			fmt.Printf("Seeded project %q (%d configs, %d trees)\n", p.Title, len(p.Configs), len(p.Trees))
		}
	},
}

func seedOneProject(ctx context.Context, engine *thicket.Engine, tenant string, p seedProject) error {
	project, err := engine.CreateProject(ctx, tenant, p.Title, p.Description)
	if err != nil {
		return err
	}

	for _, c := range p.Configs {
		cfg, err := engine.CreateConfiguration(ctx, tenant, project.ID, &domain.Configuration{
			Name:       c.Name,
			Attributes: c.Attributes,
		})
		if err != nil {
			return fmt.Errorf("configuration %q: %w", c.Name, err)
		}
		if c.Selected {
			if _, err := engine.SelectConfiguration(ctx, tenant, project.ID, cfg.ID); err != nil {
				return fmt.Errorf("selecting configuration %q: %w", c.Name, err)
			}
		}
	}

	for _, st := range p.Trees {
		content := &domain.Tree{
			Title:      st.Title,
			RootNodeID: st.RootNodeID,
			Nodes:      st.Nodes,
		}
		if err := validator.ValidateTree(content); err != nil {
			return fmt.Errorf("tree %q: %w", st.Title, err)
		}

		tree, err := engine.CreateTree(ctx, tenant, project.ID, st.Title)
		if err != nil {
			return fmt.Errorf("tree %q: %w", st.Title, err)
		}
		content.ID = tree.ID
		if _, err := engine.UpdateTree(ctx, tenant, project.ID, content); err != nil {
			return fmt.Errorf("tree %q content: %w", st.Title, err)
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
