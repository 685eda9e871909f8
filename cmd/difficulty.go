package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var difficultyCmd = &cobra.Command{
	Use:   "difficulty",
	Short: "Inspect and override per-topic difficulty",
}

var difficultyOverrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Pin a topic's difficulty (automatic adjustments are shadowed)",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		topic, _ := cmd.Flags().GetString("topic")
		value, _ := cmd.Flags().GetFloat64("value")
		clear, _ := cmd.Flags().GetBool("clear")

		if !clear && !cmd.Flags().Changed("value") {
			return fmt.Errorf("either --value or --clear is required")
		}

		eng, _, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := eng.SetManualOverride(cmd.Context(), user, topic, value, !clear); err != nil {
			return err
		}
		if clear {
			fmt.Printf("override cleared for %s/%s\n", user, topic)
		} else {
			fmt.Printf("difficulty pinned at %.1f for %s/%s\n", value, user, topic)
		}
		return nil
	},
}

var difficultyLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Show a topic's adjustment audit trail, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		topic, _ := cmd.Flags().GetString("topic")
		limit, _ := cmd.Flags().GetInt("limit")

		eng, _, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		adjustments, err := eng.Adjustments(cmd.Context(), user, topic, limit)
		if err != nil {
			return err
		}
		for _, a := range adjustments {
			applied := " "
			if !a.Applied {
				applied = " (shadow)"
			}
			fmt.Printf("%s  %.2f -> %.2f  %-18s rate %.0f%% conf %.2f%s\n",
				a.CreatedAt.Format("2006-01-02 15:04"),
				a.PreviousDifficulty, a.NewDifficulty, a.Reason,
				a.SuccessRate*100, a.Confidence, applied)
		}
		fmt.Printf("\n%d records\n", len(adjustments))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{difficultyOverrideCmd, difficultyLogCmd} {
		c.Flags().String("user", "", "User ID (required)")
		c.Flags().String("topic", "", "Topic (required)")
		_ = c.MarkFlagRequired("user")
		_ = c.MarkFlagRequired("topic")
	}
	difficultyOverrideCmd.Flags().Float64("value", 5.0, "Pinned difficulty 1-10")
	difficultyOverrideCmd.Flags().Bool("clear", false, "Release the override")
	difficultyLogCmd.Flags().Int("limit", 20, "Maximum records (0 = all)")

	difficultyCmd.AddCommand(difficultyOverrideCmd)
	difficultyCmd.AddCommand(difficultyLogCmd)
}
