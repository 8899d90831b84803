package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a fresh conversation",
	Long: `Start a fresh conversation and make it current.

The previous conversation's history stays on disk; only the pointer to
the current conversation moves.`,
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.shutdown(context.Background()) }()

	id, err := a.chat.StartNewConversation()
	if err != nil {
		return err
	}

	fmt.Printf("Started conversation %s\n", id)
	return nil
}
