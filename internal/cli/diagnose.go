package cli

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"codexswitch/internal/data/db"
	"codexswitch/internal/diagnose"
)

// DiagnoseCommand runs the full endpoint diagnosis
func DiagnoseCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Probe a relay endpoint and report which API routes work",
		Long: `Probe an OpenAI-compatible relay across its known endpoint paths and
report which routes respond, whether the model is available, and a
conclusion about the link's health.

Credentials come from --base-url/--api-key or from a stored account:
  diagnose --account work --model gpt-5
  diagnose --base-url https://relay.example.com/v1 --api-key sk-... --model gpt-5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(app, cmd)
		},
	}

	cmd.Flags().String("account", "", "stored account to take credentials from")
	cmd.Flags().String("base-url", "", "relay base URL")
	cmd.Flags().String("api-key", "", "API key")
	cmd.Flags().String("org-id", "", "organization ID")
	cmd.Flags().String("model", "gpt-5", "model to check availability for")
	cmd.Flags().Duration("timeout", 0, "per-request timeout (default 60s)")
	cmd.Flags().Bool("no-latency", false, "skip ping/HEAD latency measurement")

	return cmd
}

func runDiagnose(app *App, cmd *cobra.Command) error {
	accountName, _ := cmd.Flags().GetString("account")
	baseURL, _ := cmd.Flags().GetString("base-url")
	apiKey, _ := cmd.Flags().GetString("api-key")
	orgID, _ := cmd.Flags().GetString("org-id")
	model, _ := cmd.Flags().GetString("model")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	noLatency, _ := cmd.Flags().GetBool("no-latency")

	target, err := app.resolveTarget(accountName, baseURL, apiKey, orgID, model)
	if err != nil {
		return err
	}
	target.Timeout = timeout

	var opts []diagnose.Option
	if noLatency {
		opts = append(opts, diagnose.WithoutLatencyProbe())
	}
	engine := diagnose.New(opts...)

	report, err := engine.Run(target)
	if err != nil {
		return err
	}

	fmt.Println(report.Detail)
	fmt.Println()
	fmt.Println("Conclusion: " + report.Conclusion)

	app.DiagnosisLog().Append("diagnose "+report.Host, report.Detail)
	if history, err := app.History(); err == nil {
		record := &db.DiagnosisRecord{
			BaseURL:        target.BaseURL,
			Host:           report.Host,
			Model:          target.Model,
			Conclusion:     report.Conclusion,
			ModelSupported: report.Verdict.Supported.String(),
			SupportSource:  report.Verdict.Source,
			SucceededCount: len(report.SucceededLabels),
			CreatedAt:      time.Now().UTC(),
		}
		if err := history.Record(record); err != nil {
			logrus.Warnf("failed to record diagnosis history: %v", err)
		}
	} else {
		logrus.Warnf("history unavailable: %v", err)
	}

	return nil
}
