package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"codexswitch/internal/config"
)

// ImportCommand reads accounts from a YAML or JSON export file
func ImportCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import accounts from a YAML or JSON export",
		Long: `Import accounts produced by 'export'. Entries without an API key are
skipped; existing accounts with the same name are overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatStr, _ := cmd.Flags().GetString("format")
			return runImport(app, args[0], formatStr)
		},
	}

	cmd.Flags().String("format", "", "input format: yaml or json (default: by file extension)")

	return cmd
}

func runImport(app *App, path, formatStr string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if formatStr == "" {
		formatStr = "yaml"
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			formatStr = "json"
		}
	}

	var entries []exportedAccount
	switch strings.ToLower(formatStr) {
	case "yaml", "yml":
		err = yaml.Unmarshal(raw, &entries)
	case "json":
		err = json.Unmarshal(raw, &entries)
	default:
		return fmt.Errorf("invalid format '%s': supported formats are yaml and json", formatStr)
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	imported, skipped := 0, 0
	for _, entry := range entries {
		if entry.Name == "" || entry.BaseURL == "" || entry.APIKey == "" {
			skipped++
			continue
		}
		profile := config.Profile{
			BaseURL: entry.BaseURL,
			APIKey:  entry.APIKey,
			OrgID:   entry.OrgID,
		}
		if err := app.Store.Upsert(entry.Name, profile, entry.IsTeam); err != nil {
			return err
		}
		imported++
	}

	fmt.Printf("Imported %d accounts (%d skipped)\n", imported, skipped)
	return nil
}
