package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"codexswitch/internal/chatcheck"
	"codexswitch/internal/config"
)

// ChatCheckCommand sends a real chat completion through the OpenAI SDK
func ChatCheckCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat-check [account]",
		Short: "Send a real chat completion to verify an account works",
		Long: `Send a one-message chat completion through the official OpenAI SDK using
the named account's credentials (or the active account when omitted).
This exercises the full request path rather than just probing routes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")

			var account config.Account
			var ok bool
			if len(args) > 0 {
				account, ok = app.Store.Get(args[0])
				if !ok {
					return fmt.Errorf("account not found: %s", args[0])
				}
			} else {
				account, ok = app.Store.Active()
				if !ok {
					return fmt.Errorf("no active account; name one explicitly")
				}
			}

			result, err := chatcheck.Run(cmd.Context(), account, model)
			if err != nil {
				return err
			}

			fmt.Printf("Response: %s\n", result.Content)
			fmt.Printf("Tokens: %d prompt / %d completion / %d total\n",
				result.Usage.PromptTokens, result.Usage.CompletionTokens, result.Usage.TotalTokens)
			fmt.Printf("Processing time: %dms\n", result.ProcessingMS)
			return nil
		},
	}

	cmd.Flags().String("model", "gpt-5", "model to use for the check")

	return cmd
}
