package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parlorchat/parlor/internal/chat"
)

var askShowProgress bool

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message and print the agent's reply",
	Long: `Send a single message in the current conversation and print the reply.

The message joins the restored conversation, so the agent keeps its
context across ask invocations and interactive sessions.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askShowProgress, "progress", false, "print task progress to stderr while waiting")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.shutdown(context.Background()) }()

	text := strings.Join(args, " ")

	var onProgress func(chat.Progress)
	if askShowProgress {
		onProgress = func(p chat.Progress) {
			if p.Rationale != "" {
				fmt.Fprintf(os.Stderr, "[%d] %s\n", p.Completed, p.Rationale)
			} else {
				fmt.Fprintf(os.Stderr, "[%d]\n", p.Completed)
			}
		}
	}

	reply, err := a.chat.Submit(ctx, text, onProgress)
	if err != nil {
		return err
	}

	fmt.Println(reply.Text)
	return nil
}
