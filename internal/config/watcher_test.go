package config

import (
	"encoding/json"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreWatcherReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(WithDir(dir))
	require.NoError(t, err)

	watcher, err := NewStoreWatcher(store)
	require.NoError(t, err)
	var notified atomic.Int32
	watcher.AddCallback(func(*Store) { notified.Add(1) })
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	// Simulate another process rewriting the store file.
	external := storeData{
		Profiles: map[string]Profile{
			"external": {BaseURL: "https://external.example.com/v1", APIKey: "sk-x"},
		},
		Teams: map[string]Profile{},
	}
	raw, err := json.MarshalIndent(external, "", "  ")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, os.WriteFile(store.Path(), append(raw, '\n'), 0o600))

	assert.Eventually(t, func() bool {
		return notified.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	_, ok := store.Get("external")
	assert.True(t, ok)
}

func TestStoreWatcherStartTwice(t *testing.T) {
	store := newTestStore(t)
	watcher, err := NewStoreWatcher(store)
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	assert.Error(t, watcher.Start())
}
