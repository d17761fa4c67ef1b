package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const providerSection = "model_providers.codexzh"

// UpdateConfigBaseURL rewrites the provider base_url inside config.toml. The
// edit is line surgical so unrelated sections, comments and the file's
// original line endings survive untouched. A missing file or section is
// created.
func UpdateConfigBaseURL(dir, newURL string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path := filepath.Join(dir, ConfigFileName)

	var text string
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	text = string(raw)

	lineEnding := "\n"
	if strings.Contains(text, "\r\n") {
		lineEnding = "\r\n"
	}

	baseLine := fmt.Sprintf("base_url = %q", newURL)
	lines := splitLines(text)
	if len(lines) == 0 {
		lines = []string{
			`model_provider = "codexzh"`,
			"",
			"[" + providerSection + "]",
			baseLine,
		}
		return writeConfig(path, lines, lineEnding)
	}

	sectionStart := -1
	inTarget := false
	updated := false
	for idx, line := range lines {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]") {
			name := strings.Trim(strings.TrimSpace(stripped[1:len(stripped)-1]), `'"`)
			inTarget = name == providerSection
			if inTarget {
				sectionStart = idx
			}
			continue
		}
		if inTarget && strings.HasPrefix(stripped, "base_url") {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			lines[idx] = indent + baseLine
			updated = true
			break
		}
	}

	if !updated {
		if sectionStart >= 0 {
			insertAt := sectionStart + 1
			lines = append(lines[:insertAt], append([]string{baseLine}, lines[insertAt:]...)...)
		} else {
			if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) != "" {
				lines = append(lines, "")
			}
			lines = append(lines, "["+providerSection+"]", baseLine)
		}
	}
	return writeConfig(path, lines, lineEnding)
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.TrimSuffix(normalized, "\n")
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, "\n")
}

func writeConfig(path string, lines []string, lineEnding string) error {
	out := strings.Join(lines, lineEnding)
	if !strings.HasSuffix(out, lineEnding) {
		out += lineEnding
	}
	if err := os.WriteFile(path, []byte(out), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// UpdateAuthKey sets OPENAI_API_KEY in auth.json, preserving every other key
// in the file. Unparseable content is regenerated from scratch.
func UpdateAuthKey(dir, apiKey string) error {
	return updateAuth(dir, func(doc string) (string, error) {
		return sjson.Set(doc, "OPENAI_API_KEY", apiKey)
	})
}

// UpdateAuthOrgID sets OPENAI_ORG_ID in auth.json, or removes the key when
// orgID is empty.
func UpdateAuthOrgID(dir, orgID string) error {
	return updateAuth(dir, func(doc string) (string, error) {
		if orgID == "" {
			return sjson.Delete(doc, "OPENAI_ORG_ID")
		}
		return sjson.Set(doc, "OPENAI_ORG_ID", orgID)
	})
}

func updateAuth(dir string, edit func(string) (string, error)) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path := filepath.Join(dir, AuthFileName)

	doc := "{}"
	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(raw) > 0 {
		trimmed := strings.TrimSpace(string(raw))
		if strings.HasPrefix(trimmed, "{") && gjson.Valid(trimmed) {
			doc = trimmed
		}
	}

	doc, err = edit(doc)
	if err != nil {
		return fmt.Errorf("failed to edit %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(doc+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Apply switches the live Codex configuration to the given account: the
// provider base URL in config.toml, the API key in auth.json, the org ID for
// team accounts, and the store's active pointer. Existing files are backed up
// first.
func Apply(store *Store, account Account) error {
	dir := store.Dir()
	if _, err := BackupConfig(dir); err != nil {
		return err
	}
	if err := UpdateConfigBaseURL(dir, account.BaseURL); err != nil {
		return err
	}
	if err := UpdateAuthKey(dir, account.APIKey); err != nil {
		return err
	}
	orgID := ""
	if account.IsTeam {
		orgID = account.OrgID
	}
	if err := UpdateAuthOrgID(dir, orgID); err != nil {
		return err
	}
	return store.SetActive(account)
}
