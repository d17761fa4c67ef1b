package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codexswitch/internal/config"
)

// AddCommand represents the add account command
func AddCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name] [baseurl] [apikey]",
		Short: "Add or update a stored account",
		Long: `Add an account with name, relay base URL, and API key.
You can provide the arguments as positional parameters:
  add work https://relay.example.com/v1 your-key-here

Or run the command without arguments for interactive mode.
Use --team with --org-id to store a team account.`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			isTeam, _ := cmd.Flags().GetBool("team")
			orgID, _ := cmd.Flags().GetString("org-id")
			return runAdd(app, args, isTeam, orgID)
		},
	}

	cmd.Flags().Bool("team", false, "store as a team account")
	cmd.Flags().String("org-id", "", "organization ID for team accounts")

	return cmd
}

func runAdd(app *App, args []string, isTeam bool, orgID string) error {
	reader := bufio.NewReader(os.Stdin)

	var name, baseURL, apiKey string
	if len(args) > 0 {
		name = args[0]
	}
	if len(args) > 1 {
		baseURL = args[1]
	}
	if len(args) > 2 {
		apiKey = args[2]
	}

	var err error
	if name == "" {
		if name, err = prompt(reader, "Account name: "); err != nil {
			return err
		}
	}
	if baseURL == "" {
		if baseURL, err = prompt(reader, "Base URL: "); err != nil {
			return err
		}
	}
	if apiKey == "" {
		if apiKey, err = prompt(reader, "API key: "); err != nil {
			return err
		}
	}
	if isTeam && orgID == "" {
		if orgID, err = prompt(reader, "Organization ID: "); err != nil {
			return err
		}
	}

	if name == "" || baseURL == "" || apiKey == "" {
		return fmt.Errorf("name, base URL and API key are all required")
	}

	profile := config.Profile{BaseURL: baseURL, APIKey: apiKey, OrgID: orgID}
	if err := app.Store.Upsert(name, profile, isTeam); err != nil {
		return err
	}
	fmt.Printf("Saved account '%s'\n", name)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ListCommand represents the list accounts command
func ListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts := app.Store.Accounts()
			if len(accounts) == 0 {
				fmt.Println("No accounts stored. Use 'add' to create one.")
				return nil
			}

			active, hasActive := app.Store.Active()
			for _, account := range accounts {
				marker := " "
				if hasActive && active.Name == account.Name && active.IsTeam == account.IsTeam {
					marker = "*"
				}
				fmt.Printf("%s %-20s %-10s %s\n", marker, account.Name, account.AccountType, account.BaseURL)
			}
			return nil
		},
	}
}

// DeleteCommand represents the delete account command
func DeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, ok := app.Store.Get(args[0])
			if !ok {
				return fmt.Errorf("account not found: %s", args[0])
			}
			if err := app.Store.Delete(account); err != nil {
				return err
			}
			fmt.Printf("Deleted account '%s'\n", args[0])
			return nil
		},
	}
}

// UseCommand switches the live Codex configuration to a stored account
func UseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Switch the Codex configuration to an account",
		Long: `Rewrite config.toml and auth.json so Codex uses the named account's
base URL, API key, and (for team accounts) organization ID. The previous
files are backed up first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, ok := app.Store.Get(args[0])
			if !ok {
				return fmt.Errorf("account not found: %s", args[0])
			}
			if err := config.Apply(app.Store, account); err != nil {
				return err
			}
			fmt.Printf("Switched to '%s' (%s)\n", account.Name, account.BaseURL)
			return nil
		},
	}
}

// CurrentCommand prints the active account
func CurrentCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active account",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, ok := app.Store.Active()
			if !ok {
				fmt.Println("No active account.")
				return nil
			}
			fmt.Printf("%s (%s) %s\n", account.Name, account.AccountType, account.BaseURL)
			return nil
		},
	}
}
