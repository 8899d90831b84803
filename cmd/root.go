// Package cmd contains the parlor command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parlor",
	Short: "Parlor - terminal chat with your AWS-hosted agent",
	Long: `Parlor is a terminal chat client for agents hosted on AWS.

It talks to either a Bedrock hosted agent or a Lambda-based Strands agent,
streams the response while showing the agent's reasoning progress, and
keeps your conversation across launches.

Running parlor without arguments opens the interactive chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
