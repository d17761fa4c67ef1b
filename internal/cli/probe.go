package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"codexswitch/internal/diagnose"
)

// ProbeCommand tests whether a single model responds
func ProbeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe <model>",
		Short: "Test whether a model responds, with retries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountName, _ := cmd.Flags().GetString("account")
			baseURL, _ := cmd.Flags().GetString("base-url")
			apiKey, _ := cmd.Flags().GetString("api-key")
			orgID, _ := cmd.Flags().GetString("org-id")
			retries, _ := cmd.Flags().GetInt("retries")
			wait, _ := cmd.Flags().GetDuration("wait")

			target, err := app.resolveTarget(accountName, baseURL, apiKey, orgID, args[0])
			if err != nil {
				return err
			}

			engine := diagnose.New()
			result := engine.TestModel(target, retries, wait)

			if result.OK {
				fmt.Printf("%s: available (via %s)\n", result.Model, result.Endpoint)
				return nil
			}
			fmt.Printf("%s: unavailable\n", result.Model)
			fmt.Println(result.Error)
			return nil
		},
	}

	cmd.Flags().String("account", "", "stored account to take credentials from")
	cmd.Flags().String("base-url", "", "relay base URL")
	cmd.Flags().String("api-key", "", "API key")
	cmd.Flags().String("org-id", "", "organization ID")
	cmd.Flags().Int("retries", 0, "retry attempts (default 3)")
	cmd.Flags().Duration("wait", 0, "delay between attempts (default 2s)")

	return cmd
}
