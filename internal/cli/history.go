package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// HistoryCommand lists past diagnosis results
func HistoryCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent diagnosis results",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			baseURL, _ := cmd.Flags().GetString("base-url")

			history, err := app.History()
			if err != nil {
				return err
			}

			records, err := history.Recent(limit)
			if baseURL != "" {
				records, err = history.ForBaseURL(baseURL, limit)
			}
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No diagnosis history.")
				return nil
			}

			for _, record := range records {
				fmt.Printf("%s  %-30s model=%s supported=%s endpoints=%d\n",
					record.CreatedAt.Local().Format("2006-01-02 15:04"),
					record.Host, record.Model, record.ModelSupported, record.SucceededCount)
				fmt.Printf("    %s\n", record.Conclusion)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum records to show")
	cmd.Flags().String("base-url", "", "only show records for this base URL")

	return cmd
}
