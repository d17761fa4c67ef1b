// Package cli implements the codexswitch command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codexswitch/internal/config"
	"codexswitch/internal/data/db"
	"codexswitch/internal/diagnose"
	"codexswitch/internal/obs"
)

// App bundles the shared state every subcommand needs.
type App struct {
	Store     *config.Store
	ConfigDir string

	history *db.HistoryStore
	diagLog *obs.DiagnosisLog
}

// NewApp returns an empty App. Init must run before any command uses it,
// after flags are parsed.
func NewApp() *App {
	return &App{}
}

// Init opens the profile store in the given directory (or the default
// ~/.codex when empty).
func (a *App) Init(configDir string) error {
	if configDir == "" {
		configDir = config.DefaultDir()
	} else {
		expanded, err := expandDir(configDir)
		if err != nil {
			return err
		}
		configDir = expanded
	}

	store, err := config.NewStore(config.WithDir(configDir))
	if err != nil {
		return err
	}
	a.Store = store
	a.ConfigDir = configDir
	return nil
}

// History lazily opens the diagnosis history database.
func (a *App) History() (*db.HistoryStore, error) {
	if a.history == nil {
		history, err := db.NewHistoryStore(a.ConfigDir)
		if err != nil {
			return nil, err
		}
		a.history = history
	}
	return a.history, nil
}

// DiagnosisLog lazily opens the transcript log.
func (a *App) DiagnosisLog() *obs.DiagnosisLog {
	if a.diagLog == nil {
		a.diagLog = obs.NewDiagnosisLog(a.ConfigDir)
	}
	return a.diagLog
}

// Close releases held resources.
func (a *App) Close() {
	if a.history != nil {
		_ = a.history.Close()
	}
	if a.diagLog != nil {
		_ = a.diagLog.Close()
	}
}

func expandDir(dir string) (string, error) {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Abs(dir)
}

// resolveTarget builds a diagnostic target from flags, falling back to a
// stored account's credentials.
func (a *App) resolveTarget(accountName, baseURL, apiKey, orgID, model string) (diagnose.Target, error) {
	if accountName != "" {
		account, ok := a.Store.Get(accountName)
		if !ok {
			return diagnose.Target{}, fmt.Errorf("account not found: %s", accountName)
		}
		if baseURL == "" {
			baseURL = account.BaseURL
		}
		if apiKey == "" {
			apiKey = account.APIKey
		}
		if orgID == "" && account.IsTeam {
			orgID = account.OrgID
		}
	}
	return diagnose.Target{
		BaseURL: baseURL,
		APIKey:  apiKey,
		OrgID:   orgID,
		Model:   model,
	}, nil
}
