package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var suspendCmd = &cobra.Command{
	Use:   "suspend",
	Short: "Suspend a card (removed from scheduling until resumed)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSuspension(cmd, true)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a suspended card at the learning level",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setSuspension(cmd, false)
	},
}

func setSuspension(cmd *cobra.Command, suspend bool) error {
	user, _ := cmd.Flags().GetString("user")
	item, _ := cmd.Flags().GetString("item")

	eng, _, _, cleanup, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if suspend {
		err = eng.SuspendItem(cmd.Context(), user, item)
	} else {
		err = eng.ResumeItem(cmd.Context(), user, item)
	}
	if err != nil {
		return err
	}
	action := "suspended"
	if !suspend {
		action = "resumed"
	}
	fmt.Printf("%s/%s %s\n", user, item, action)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{suspendCmd, resumeCmd} {
		c.Flags().String("user", "", "User ID (required)")
		c.Flags().String("item", "", "Item ID (required)")
		_ = c.MarkFlagRequired("user")
		_ = c.MarkFlagRequired("item")
	}
}
