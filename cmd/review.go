package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avelar/adapt/internal/engine"
	"github.com/avelar/adapt/internal/srs"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Submit one review event",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		item, _ := cmd.Flags().GetString("item")
		quality, _ := cmd.Flags().GetInt("quality")
		ms, _ := cmd.Flags().GetInt("ms")
		hints, _ := cmd.Flags().GetBool("hints")

		eng, _, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := eng.SubmitReview(cmd.Context(), engine.ReviewSubmission{
			UserID:         user,
			ItemID:         item,
			Quality:        srs.Quality(quality),
			ResponseTimeMs: ms,
			HintsUsed:      hints,
		})
		if err != nil {
			return err
		}

		s := res.Scheduling
		fmt.Printf("%s/%s: level %s, interval %dd, ease %.2f, due %s\n",
			user, item, s.Level, s.IntervalDays, s.Ease, s.Due.Format("2006-01-02 15:04"))
		fmt.Printf("reviews %d, accuracy %.0f%%, streak %d, retrievability was %.2f\n",
			res.Statistics.TotalReviews, res.Statistics.Accuracy()*100,
			res.Statistics.Streak, res.Retrievability)
		if res.Transition != nil {
			fmt.Printf("mastery: %s -> %s (%s)\n",
				res.Transition.From, res.Transition.To, res.Transition.Trigger)
		}
		if res.Adjustment != nil {
			applied := "applied"
			if !res.Adjustment.Applied {
				applied = "shadowed by manual override"
			}
			fmt.Printf("difficulty %s: %.2f -> %.2f (%s)\n",
				applied, res.Adjustment.PreviousDifficulty,
				res.Adjustment.NewDifficulty, res.Adjustment.Reason)
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().String("user", "", "User ID (required)")
	reviewCmd.Flags().String("item", "", "Item ID (required)")
	reviewCmd.Flags().Int("quality", -1, "Response quality 0-5 (required)")
	reviewCmd.Flags().Int("ms", 0, "Response time in milliseconds")
	reviewCmd.Flags().Bool("hints", false, "Hints were used")
	_ = reviewCmd.MarkFlagRequired("user")
	_ = reviewCmd.MarkFlagRequired("item")
	_ = reviewCmd.MarkFlagRequired("quality")
}
