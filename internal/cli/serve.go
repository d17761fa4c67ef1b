package cli

import (
	"github.com/spf13/cobra"

	"codexswitch/internal/obs"
	"codexswitch/internal/server"
)

const defaultServePort = 8318

// ServeCommand starts the localhost API server
func ServeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the localhost API server for GUI frontends",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetInt("port")
			verbose, _ := cmd.Flags().GetBool("verbose")

			obs.SetupLogging(app.ConfigDir, verbose)

			opts := []server.ServerOption{
				server.WithDiagnosisLog(app.DiagnosisLog()),
			}
			if history, err := app.History(); err == nil {
				opts = append(opts, server.WithHistoryStore(history))
			}

			srv := server.NewServer(app.Store, opts...)
			return srv.Start(port)
		},
	}

	cmd.Flags().Int("port", defaultServePort, "port to listen on (localhost only)")

	return cmd
}
