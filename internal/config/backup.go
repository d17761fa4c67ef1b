package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	cp "github.com/otiai10/copy"
)

const backupDirName = "backups"

// BackupConfig copies config.toml, auth.json and the profile store into a
// timestamped directory under <dir>/backups. Files that do not exist yet are
// skipped. Returns the backup directory path, or "" when nothing was copied.
func BackupConfig(dir string) (string, error) {
	targets := []string{ConfigFileName, AuthFileName, StoreFileName}

	existing := make([]string, 0, len(targets))
	for _, name := range targets {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			existing = append(existing, name)
		}
	}
	if len(existing) == 0 {
		return "", nil
	}

	backupDir := filepath.Join(dir, backupDirName, time.Now().Format("20060102-150405"))
	if err := os.MkdirAll(backupDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	for _, name := range existing {
		src := filepath.Join(dir, name)
		dst := filepath.Join(backupDir, name)
		if err := cp.Copy(src, dst); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", name, err)
		}
	}
	return backupDir, nil
}

// PruneBackups removes the oldest backup directories, keeping at most keep
// entries.
func PruneBackups(dir string, keep int) error {
	root := filepath.Join(dir, backupDirName)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= keep {
		return nil
	}
	// Timestamp names sort chronologically.
	for _, name := range names[:len(names)-keep] {
		if err := os.RemoveAll(filepath.Join(root, name)); err != nil {
			return err
		}
	}
	return nil
}
