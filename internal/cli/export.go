package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type exportedAccount struct {
	Name    string `json:"name" yaml:"name"`
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	OrgID   string `json:"org_id,omitempty" yaml:"org_id,omitempty"`
	IsTeam  bool   `json:"is_team" yaml:"is_team"`
}

// ExportCommand writes stored accounts to a file or stdout
func ExportCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored accounts to YAML or JSON",
		Long: `Export all stored accounts for backup or transfer.
API keys are omitted unless --include-keys is set.

Examples:
  codexswitch export --format yaml --output accounts.yaml
  codexswitch export --format json --include-keys > accounts.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(app, cmd)
		},
	}

	cmd.Flags().String("format", "yaml", "export format: yaml or json")
	cmd.Flags().String("output", "", "output file path (default: stdout)")
	cmd.Flags().Bool("include-keys", false, "include API keys in the export")

	return cmd
}

func runExport(app *App, cmd *cobra.Command) error {
	formatStr, _ := cmd.Flags().GetString("format")
	outputFile, _ := cmd.Flags().GetString("output")
	includeKeys, _ := cmd.Flags().GetBool("include-keys")

	accounts := app.Store.Accounts()
	exported := make([]exportedAccount, 0, len(accounts))
	for _, account := range accounts {
		entry := exportedAccount{
			Name:    account.Name,
			BaseURL: account.BaseURL,
			OrgID:   account.OrgID,
			IsTeam:  account.IsTeam,
		}
		if includeKeys {
			entry.APIKey = account.APIKey
		}
		exported = append(exported, entry)
	}

	var raw []byte
	var err error
	switch strings.ToLower(formatStr) {
	case "yaml", "yml":
		raw, err = yaml.Marshal(exported)
	case "json":
		raw, err = json.MarshalIndent(exported, "", "  ")
		raw = append(raw, '\n')
	default:
		return fmt.Errorf("invalid format '%s': supported formats are yaml and json", formatStr)
	}
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}

	if outputFile == "" {
		fmt.Print(string(raw))
		return nil
	}
	if err := os.WriteFile(outputFile, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	fmt.Printf("Exported %d accounts to %s\n", len(exported), outputFile)
	return nil
}
