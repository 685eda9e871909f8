package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avelar/adapt/internal/batch"
	"github.com/avelar/adapt/internal/engine"
)

var precomputeCmd = &cobra.Command{
	Use:   "precompute",
	Short: "Precompute session queues for every user",
	RunE: func(cmd *cobra.Command, args []string) error {
		budget, _ := cmd.Flags().GetInt("budget")
		maxNew, _ := cmd.Flags().GetInt("max-new")
		maxReview, _ := cmd.Flags().GetInt("max-review")
		ratio, _ := cmd.Flags().GetFloat64("ratio")
		every, _ := cmd.Flags().GetDuration("every")

		eng, st, log, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		p := batch.New(eng, st, engine.QueueRequest{
			SessionBudgetMinutes: budget,
			MaxNewCards:          maxNew,
			MaxReviewCards:       maxReview,
			NewReviewRatio:       ratio,
		}, log)

		if every == 0 {
			p.RunOnce(cmd.Context())
			return nil
		}

		if err := p.Start(every); err != nil {
			return err
		}
		defer p.Stop()
		fmt.Printf("precomputing every %s, ctrl-c to stop\n", every)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		return nil
	},
}

func init() {
	precomputeCmd.Flags().Int("budget", 30, "Session time budget in minutes")
	precomputeCmd.Flags().Int("max-new", 10, "Maximum new cards")
	precomputeCmd.Flags().Int("max-review", 100, "Maximum review cards")
	precomputeCmd.Flags().Float64("ratio", 0.25, "Target fraction of new cards")
	precomputeCmd.Flags().Duration("every", 0, "Keep running at this interval (0 = run once)")
}
