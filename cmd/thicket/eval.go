package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/eval"
)

// evalCmd evaluates a single condition expression without touching any
// store. Handy for debugging why a node is (or isn't) showing up.
var evalCmd = &cobra.Command{
	Use:   "eval <condition>",
	Short: "Evaluate a condition expression against configuration attributes",
	Long: `Evaluates one condition, e.g. 'config["cloud"] == true', against a set
of configuration attributes given inline as JSON or loaded from a YAML
file. Prints "true" or "false"; the exit code mirrors the result.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		attrsJSON, _ := cmd.Flags().GetString("attributes")
		attrsFile, _ := cmd.Flags().GetString("attributes-file")

		attrs := map[string]any{}
		switch {
		case attrsFile != "":
			data, err := os.ReadFile(attrsFile)
			if err != nil {
				fmt.Printf("Error reading attributes file: %v\n", err)
				os.Exit(2)
			}
			if err := yaml.Unmarshal(data, &attrs); err != nil {
				fmt.Printf("Error parsing attributes file: %v\n", err)
				os.Exit(2)
			}
		case attrsJSON != "":
			if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
				fmt.Printf("Error parsing attributes JSON: %v\n", err)
				os.Exit(2)
			}
		}

		resolved := eval.Evaluate(args[0], domain.Configuration{Attributes: attrs})
		fmt.Println(resolved)
		if !resolved {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringP("attributes", "a", "", "Configuration attributes as a JSON object")
	evalCmd.Flags().StringP("attributes-file", "f", "", "YAML file of configuration attributes")
}
