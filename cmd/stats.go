package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a user's scheduling and difficulty summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		_, st, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		ctx := cmd.Context()

		scheds, err := st.Scheduling().ListByUser(ctx, user)
		if err != nil {
			return err
		}
		byLevel := map[string]int{}
		for _, s := range scheds {
			byLevel[string(s.Level)]++
		}
		fmt.Printf("cards: %d total", len(scheds))
		for _, level := range []string{"learning", "young", "mature", "master", "suspended"} {
			if n := byLevel[level]; n > 0 {
				fmt.Printf(", %d %s", n, level)
			}
		}
		fmt.Println()

		acc, err := st.Statistics().TopicAccuracies(ctx, user)
		if err != nil {
			return err
		}
		states, err := st.Difficulty().ListByUser(ctx, user)
		if err != nil {
			return err
		}
		if len(states) > 0 {
			fmt.Printf("\n%-20s  %10s  %9s  %9s  %8s\n",
				"Topic", "Difficulty", "Target", "Accuracy", "Reviews")
			fmt.Println(strings.Repeat("─", 64))
			for _, s := range states {
				a := acc[s.Topic]
				override := ""
				if s.ManualOverrideEnabled {
					override = " (override)"
				}
				fmt.Printf("%-20s  %10.2f  %8.0f%%  %8.0f%%  %8d%s\n",
					s.Topic, s.EffectiveDifficulty(), s.TargetSuccessRate*100,
					a.Accuracy*100, a.Reviews, override)
			}
		}

		recent, err := st.Reviews().ListByUser(ctx, user, 10)
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			fmt.Printf("\nlast %d reviews:\n", len(recent))
			for _, rev := range recent {
				mark := "✗"
				if rev.Correct {
					mark = "✓"
				}
				fmt.Printf("  %s  %-24s  q%d %s\n",
					rev.ReviewedAt.Format("2006-01-02 15:04"), rev.ItemID, rev.Quality, mark)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().String("user", "", "User ID (required)")
	_ = statsCmd.MarkFlagRequired("user")
}
