package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestUpdateConfigBaseURLCreatesFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, UpdateConfigBaseURL(dir, "https://relay.example.com/v1"))

	text := readFile(t, filepath.Join(dir, ConfigFileName))
	assert.Contains(t, text, `model_provider = "codexzh"`)
	assert.Contains(t, text, "[model_providers.codexzh]")
	assert.Contains(t, text, `base_url = "https://relay.example.com/v1"`)
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestUpdateConfigBaseURLRewritesInPlace(t *testing.T) {
	dir := t.TempDir()
	original := strings.Join([]string{
		"# managed by codex",
		`model = "gpt-5"`,
		"",
		"[model_providers.codexzh]",
		`  base_url = "https://old.example.com/v1"`,
		`wire_api = "responses"`,
		"",
		"[other_section]",
		`key = "value"`,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(original), 0o600))

	require.NoError(t, UpdateConfigBaseURL(dir, "https://new.example.com/v1"))

	text := readFile(t, filepath.Join(dir, ConfigFileName))
	assert.Contains(t, text, "# managed by codex")
	assert.Contains(t, text, `  base_url = "https://new.example.com/v1"`)
	assert.NotContains(t, text, "old.example.com")
	assert.Contains(t, text, `wire_api = "responses"`)
	assert.Contains(t, text, `key = "value"`)
}

func TestUpdateConfigBaseURLIgnoresOtherSections(t *testing.T) {
	dir := t.TempDir()
	original := strings.Join([]string{
		"[model_providers.other]",
		`base_url = "https://keep.example.com"`,
		"",
		"[model_providers.codexzh]",
		`base_url = "https://old.example.com"`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(original), 0o600))

	require.NoError(t, UpdateConfigBaseURL(dir, "https://new.example.com"))

	text := readFile(t, filepath.Join(dir, ConfigFileName))
	assert.Contains(t, text, `base_url = "https://keep.example.com"`)
	assert.Contains(t, text, `base_url = "https://new.example.com"`)
}

func TestUpdateConfigBaseURLAppendsMissingSection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("[foo]\nbar = 1\n"), 0o600))

	require.NoError(t, UpdateConfigBaseURL(dir, "https://relay.example.com/v1"))

	text := readFile(t, filepath.Join(dir, ConfigFileName))
	assert.Contains(t, text, "[foo]")
	assert.Contains(t, text, "[model_providers.codexzh]\nbase_url = \"https://relay.example.com/v1\"")
}

func TestUpdateConfigBaseURLInsertsIntoEmptySection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("[model_providers.codexzh]\nwire_api = \"responses\"\n"), 0o600))

	require.NoError(t, UpdateConfigBaseURL(dir, "https://relay.example.com/v1"))

	text := readFile(t, filepath.Join(dir, ConfigFileName))
	assert.Equal(t, "[model_providers.codexzh]\nbase_url = \"https://relay.example.com/v1\"\nwire_api = \"responses\"\n", text)
}

func TestUpdateConfigBaseURLPreservesCRLF(t *testing.T) {
	dir := t.TempDir()
	original := "[model_providers.codexzh]\r\nbase_url = \"https://old.example.com\"\r\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(original), 0o600))

	require.NoError(t, UpdateConfigBaseURL(dir, "https://new.example.com"))

	text := readFile(t, filepath.Join(dir, ConfigFileName))
	assert.Equal(t, "[model_providers.codexzh]\r\nbase_url = \"https://new.example.com\"\r\n", text)
}

func TestUpdateAuthKeyPreservesOtherFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, AuthFileName),
		[]byte(`{"OPENAI_API_KEY":"sk-old","tokens":{"id_token":"abc"}}`), 0o600))

	require.NoError(t, UpdateAuthKey(dir, "sk-new"))

	text := readFile(t, filepath.Join(dir, AuthFileName))
	assert.Equal(t, "sk-new", gjson.Get(text, "OPENAI_API_KEY").String())
	assert.Equal(t, "abc", gjson.Get(text, "tokens.id_token").String())
}

func TestUpdateAuthKeyRegeneratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, AuthFileName), []byte("{broken"), 0o600))

	require.NoError(t, UpdateAuthKey(dir, "sk-new"))

	text := readFile(t, filepath.Join(dir, AuthFileName))
	assert.Equal(t, "sk-new", gjson.Get(text, "OPENAI_API_KEY").String())
}

func TestUpdateAuthOrgIDSetAndDelete(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, UpdateAuthOrgID(dir, "org-123"))
	text := readFile(t, filepath.Join(dir, AuthFileName))
	assert.Equal(t, "org-123", gjson.Get(text, "OPENAI_ORG_ID").String())

	require.NoError(t, UpdateAuthOrgID(dir, ""))
	text = readFile(t, filepath.Join(dir, AuthFileName))
	assert.False(t, gjson.Get(text, "OPENAI_ORG_ID").Exists())
}

func TestApplySwitchesEverything(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(WithDir(dir))
	require.NoError(t, err)
	require.NoError(t, store.Upsert("corp", Profile{
		BaseURL: "https://corp.example.com/v1",
		APIKey:  "sk-corp",
		OrgID:   "org-corp",
	}, true))
	account, ok := store.Get("corp")
	require.True(t, ok)

	require.NoError(t, Apply(store, account))

	configText := readFile(t, filepath.Join(dir, ConfigFileName))
	assert.Contains(t, configText, `base_url = "https://corp.example.com/v1"`)

	authText := readFile(t, filepath.Join(dir, AuthFileName))
	assert.Equal(t, "sk-corp", gjson.Get(authText, "OPENAI_API_KEY").String())
	assert.Equal(t, "org-corp", gjson.Get(authText, "OPENAI_ORG_ID").String())

	active, ok := store.Active()
	require.True(t, ok)
	assert.Equal(t, "corp", active.Name)
}

func TestApplyNonTeamClearsOrgID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(WithDir(dir))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, AuthFileName),
		[]byte(`{"OPENAI_ORG_ID":"org-stale"}`), 0o600))
	require.NoError(t, store.Upsert("solo", Profile{
		BaseURL: "https://relay.example.com/v1",
		APIKey:  "sk-solo",
	}, false))
	account, _ := store.Get("solo")

	require.NoError(t, Apply(store, account))

	authText := readFile(t, filepath.Join(dir, AuthFileName))
	assert.False(t, gjson.Get(authText, "OPENAI_ORG_ID").Exists())
	assert.Equal(t, "sk-solo", gjson.Get(authText, "OPENAI_API_KEY").String())
}

func TestBackupConfigCopiesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("a = 1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, AuthFileName), []byte("{}\n"), 0o600))

	backupDir, err := BackupConfig(dir)
	require.NoError(t, err)
	require.NotEmpty(t, backupDir)

	assert.Equal(t, "a = 1\n", readFile(t, filepath.Join(backupDir, ConfigFileName)))
	assert.Equal(t, "{}\n", readFile(t, filepath.Join(backupDir, AuthFileName)))
	_, err = os.Stat(filepath.Join(backupDir, StoreFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestBackupConfigNothingToCopy(t *testing.T) {
	backupDir, err := BackupConfig(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, backupDir)
}
