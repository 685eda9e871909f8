package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelar/adapt/internal/depgraph"
	"github.com/avelar/adapt/internal/mastery"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Manage the topic dependency graph",
}

var graphAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a prerequisite edge (rejected if it would create a cycle)",
	RunE: func(cmd *cobra.Command, args []string) error {
		prereq, _ := cmd.Flags().GetString("prereq")
		dependent, _ := cmd.Flags().GetString("dependent")
		level, _ := cmd.Flags().GetString("level")
		soft, _ := cmd.Flags().GetBool("soft")

		eng, _, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		mode := depgraph.ModeHard
		if soft {
			mode = depgraph.ModeSoft
		}
		err = eng.AddDependency(cmd.Context(), depgraph.Edge{
			Prereq:    prereq,
			Dependent: dependent,
			MinLevel:  mastery.Level(level),
			Mode:      mode,
		})
		if err != nil {
			return err
		}
		fmt.Printf("edge %s -> %s (%s, min %s) added\n", prereq, dependent, mode, level)
		return nil
	},
}

var graphRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a prerequisite edge",
	RunE: func(cmd *cobra.Command, args []string) error {
		prereq, _ := cmd.Flags().GetString("prereq")
		dependent, _ := cmd.Flags().GetString("dependent")

		eng, _, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := eng.RemoveDependency(cmd.Context(), prereq, dependent); err != nil {
			return err
		}
		fmt.Printf("edge %s -> %s removed\n", prereq, dependent)
		return nil
	},
}

var graphValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the stored graph and print its edges in topic order",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, st, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		edges, err := eng.ValidateGraph(cmd.Context())
		if err != nil {
			return fmt.Errorf("graph invalid: %w", err)
		}

		graph, err := st.Graph().LoadGraph(cmd.Context())
		if err != nil {
			return err
		}
		order := graph.Snapshot().TopologicalOrder()

		fmt.Printf("%-20s  %-20s  %-6s  %s\n", "Prereq", "Dependent", "Mode", "Min level")
		fmt.Println(strings.Repeat("─", 62))
		for _, e := range edges {
			fmt.Printf("%-20s  %-20s  %-6s  %s\n", e.Prereq, e.Dependent, e.Mode, e.MinLevel)
		}
		fmt.Printf("\n%d edges, no cycles\ntopic order: %s\n",
			len(edges), strings.Join(order, " -> "))
		return nil
	},
}

func init() {
	graphAddCmd.Flags().String("prereq", "", "Prerequisite topic (required)")
	graphAddCmd.Flags().String("dependent", "", "Dependent topic (required)")
	graphAddCmd.Flags().String("level", string(mastery.LevelYoung), "Minimum mastery level of the prerequisite")
	graphAddCmd.Flags().Bool("soft", false, "Soft prerequisite (priority discount instead of exclusion)")
	_ = graphAddCmd.MarkFlagRequired("prereq")
	_ = graphAddCmd.MarkFlagRequired("dependent")

	graphRemoveCmd.Flags().String("prereq", "", "Prerequisite topic (required)")
	graphRemoveCmd.Flags().String("dependent", "", "Dependent topic (required)")
	_ = graphRemoveCmd.MarkFlagRequired("prereq")
	_ = graphRemoveCmd.MarkFlagRequired("dependent")

	graphCmd.AddCommand(graphAddCmd)
	graphCmd.AddCommand(graphRemoveCmd)
	graphCmd.AddCommand(graphValidateCmd)
}
