package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codexswitch/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app := NewApp()
	require.NoError(t, app.Init(t.TempDir()))
	t.Cleanup(app.Close)
	return app
}

func TestResolveTargetFromAccount(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Store.Upsert("corp", config.Profile{
		BaseURL: "https://corp.example.com/v1",
		APIKey:  "sk-corp",
		OrgID:   "org-1",
	}, true))

	target, err := app.resolveTarget("corp", "", "", "", "gpt-5")
	require.NoError(t, err)
	assert.Equal(t, "https://corp.example.com/v1", target.BaseURL)
	assert.Equal(t, "sk-corp", target.APIKey)
	assert.Equal(t, "org-1", target.OrgID)
	assert.Equal(t, "gpt-5", target.Model)
}

func TestResolveTargetFlagsOverrideAccount(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Store.Upsert("work", config.Profile{
		BaseURL: "https://work.example.com/v1",
		APIKey:  "sk-work",
	}, false))

	target, err := app.resolveTarget("work", "https://other.example.com", "", "", "gpt-5")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com", target.BaseURL)
	assert.Equal(t, "sk-work", target.APIKey)
	assert.Empty(t, target.OrgID)
}

func TestResolveTargetUnknownAccount(t *testing.T) {
	app := newTestApp(t)
	_, err := app.resolveTarget("missing", "", "", "", "gpt-5")
	assert.Error(t, err)
}

func TestHistoryLazyInit(t *testing.T) {
	app := newTestApp(t)

	history, err := app.History()
	require.NoError(t, err)
	again, err := app.History()
	require.NoError(t, err)
	assert.Same(t, history, again)
}
