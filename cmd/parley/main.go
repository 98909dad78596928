// Command parley is a chat client for OpenAI-compatible completion APIs.
// Run without arguments to open the terminal chat window.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Chat with a hosted language model from the terminal",
	Long: `parley keeps a list of conversations in memory and sends each message,
with the conversation's history, to an OpenAI-compatible chat completions
endpoint (Groq by default).

Run without arguments to start the interactive chat window.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models offered by the completion endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModels(cmd.Context(), cmd.OutOrStdout())
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Serve the chat over Telegram for a single owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(modelsCmd, botCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
