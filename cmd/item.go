package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelar/adapt/internal/store"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage the item catalog",
}

var itemAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a catalog item",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		topic, _ := cmd.Flags().GetString("topic")
		typ, _ := cmd.Flags().GetString("type")
		diff, _ := cmd.Flags().GetFloat64("difficulty")

		_, st, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := st.Items().Upsert(cmd.Context(), store.Item{
			ID: id, Topic: topic, Type: typ, Difficulty: diff,
		}); err != nil {
			return err
		}
		fmt.Printf("item %s (%s) saved\n", id, topic)
		return nil
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog items (optionally filtered by topic)",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")

		_, st, _, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		var items []store.Item
		if topic != "" {
			items, err = st.Items().ListByTopic(cmd.Context(), topic)
		} else {
			items, err = st.Items().List(cmd.Context())
		}
		if err != nil {
			return err
		}

		fmt.Printf("%-24s  %-20s  %-10s  %10s\n", "ID", "Topic", "Type", "Difficulty")
		fmt.Println(strings.Repeat("─", 70))
		for _, item := range items {
			fmt.Printf("%-24s  %-20s  %-10s  %10.1f\n",
				item.ID, item.Topic, item.Type, item.Difficulty)
		}
		fmt.Printf("\n%d items\n", len(items))
		return nil
	},
}

func init() {
	itemAddCmd.Flags().String("id", "", "Item ID (required)")
	itemAddCmd.Flags().String("topic", "", "Topic the item belongs to (required)")
	itemAddCmd.Flags().String("type", "recall", "Item type")
	itemAddCmd.Flags().Float64("difficulty", 5.0, "Intrinsic difficulty 1-10")
	_ = itemAddCmd.MarkFlagRequired("id")
	_ = itemAddCmd.MarkFlagRequired("topic")

	itemListCmd.Flags().String("topic", "", "Filter by topic")

	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemListCmd)
}
