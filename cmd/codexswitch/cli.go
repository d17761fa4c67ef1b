package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"codexswitch/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "codexswitch",
	Short: "Codex Switch - relay diagnostics and credential profile switching",
	Long: `Codex Switch manages credential profiles for OpenAI-compatible relays and
diagnoses their endpoints: which API routes respond, whether a model is
available, and how healthy the link is. Switching a profile rewrites the
Codex config.toml and auth.json in place.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			logrus.SetLevel(logrus.TraceLevel)
		}
		return app.Init(configDir)
	},
}

var app = cli.NewApp()

// Build information variables
var (
	// Set by compiler via -ldflags
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"

	// Global configuration directory flag
	configDir string
)

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default: ~/.codex)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Codex Switch CLI\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Git Commit: %s\n", gitCommit)
			fmt.Printf("Build Time: %s\n", buildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)

	rootCmd.AddCommand(cli.AddCommand(app))
	rootCmd.AddCommand(cli.ListCommand(app))
	rootCmd.AddCommand(cli.DeleteCommand(app))
	rootCmd.AddCommand(cli.UseCommand(app))
	rootCmd.AddCommand(cli.CurrentCommand(app))
	rootCmd.AddCommand(cli.DiagnoseCommand(app))
	rootCmd.AddCommand(cli.ProbeCommand(app))
	rootCmd.AddCommand(cli.ChatCheckCommand(app))
	rootCmd.AddCommand(cli.HistoryCommand(app))
	rootCmd.AddCommand(cli.ExportCommand(app))
	rootCmd.AddCommand(cli.ImportCommand(app))
	rootCmd.AddCommand(cli.ServeCommand(app))
}

func main() {
	err := rootCmd.Execute()
	app.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
