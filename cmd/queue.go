package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelar/adapt/internal/engine"
	"github.com/avelar/adapt/internal/queue"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Build and print a prioritized session queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		budget, _ := cmd.Flags().GetInt("budget")
		maxNew, _ := cmd.Flags().GetInt("max-new")
		maxReview, _ := cmd.Flags().GetInt("max-review")
		ratio, _ := cmd.Flags().GetFloat64("ratio")
		cached, _ := cmd.Flags().GetBool("cached")
		asJSON, _ := cmd.Flags().GetBool("json")

		eng, st, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		var cards []queue.QueuedCard
		if cached {
			stored, err := st.Queues().Get(cmd.Context(), user)
			if err != nil {
				return fmt.Errorf("no precomputed queue (run `adapt precompute` first): %w", err)
			}
			if err := json.Unmarshal(stored.Payload, &cards); err != nil {
				return fmt.Errorf("decode precomputed queue: %w", err)
			}
			fmt.Fprintf(os.Stderr, "precomputed at %s\n", stored.BuiltAt.Format("2006-01-02 15:04"))
		} else {
			q, err := eng.BuildQueue(cmd.Context(), engine.QueueRequest{
				UserID:               user,
				SessionBudgetMinutes: budget,
				MaxNewCards:          maxNew,
				MaxReviewCards:       maxReview,
				NewReviewRatio:       ratio,
			})
			if err != nil {
				return err
			}
			cards = q.Cards
		}

		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(cards)
		}

		fmt.Printf("%-4s  %-24s  %-8s  %8s  %5s\n", "#", "Item", "Type", "Priority", "Est")
		fmt.Println(strings.Repeat("─", 56))
		for i, card := range cards {
			fmt.Printf("%-4d  %-24s  %-8s  %8.3f  %4ds\n",
				i+1, card.ItemID, card.ReviewType, card.Priority, card.EstimatedSeconds)
		}
		fmt.Printf("\n%d cards\n", len(cards))
		return nil
	},
}

func init() {
	queueCmd.Flags().String("user", "", "User ID (required)")
	queueCmd.Flags().Int("budget", 30, "Session time budget in minutes")
	queueCmd.Flags().Int("max-new", 10, "Maximum new cards")
	queueCmd.Flags().Int("max-review", 100, "Maximum review cards")
	queueCmd.Flags().Float64("ratio", 0.25, "Target fraction of new cards")
	queueCmd.Flags().Bool("cached", false, "Serve the precomputed queue instead of building")
	queueCmd.Flags().Bool("json", false, "Emit JSON")
	_ = queueCmd.MarkFlagRequired("user")
}
