package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// StoreWatcher monitors the profile store file and reloads it when another
// process rewrites it.
type StoreWatcher struct {
	store       *Store
	watcher     *fsnotify.Watcher
	callbacks   []func(*Store)
	stopCh      chan struct{}
	mu          sync.RWMutex
	running     bool
	lastModTime time.Time
}

// NewStoreWatcher creates a watcher for the given store.
func NewStoreWatcher(store *Store) (*StoreWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &StoreWatcher{
		store:   store,
		watcher: watcher,
		stopCh:  make(chan struct{}),
	}, nil
}

// AddCallback registers a function to be called after each reload.
func (sw *StoreWatcher) AddCallback(callback func(*Store)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.callbacks = append(sw.callbacks, callback)
}

// Start begins watching the store directory. Watching the directory rather
// than the file keeps the watch alive across atomic rename-style rewrites.
func (sw *StoreWatcher) Start() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.running {
		return fmt.Errorf("watcher is already running")
	}

	if stat, err := os.Stat(sw.store.Path()); err == nil {
		sw.lastModTime = stat.ModTime()
	}

	if err := sw.watcher.Add(sw.store.Dir()); err != nil {
		return fmt.Errorf("failed to watch store directory: %w", err)
	}

	sw.running = true
	go sw.watchLoop()

	return nil
}

// Stop stops the watcher.
func (sw *StoreWatcher) Stop() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.running {
		return nil
	}

	sw.running = false
	close(sw.stopCh)

	return sw.watcher.Close()
}

func (sw *StoreWatcher) watchLoop() {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.isStoreEvent(event) {
				continue
			}

			// Debounce rapid file changes
			debounceTimer.Stop()
			debounceTimer = time.AfterFunc(500*time.Millisecond, func() {
				sw.handleStoreChange()
			})

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logrus.Warnf("store watcher error: %v", err)

		case <-sw.stopCh:
			return
		}
	}
}

func (sw *StoreWatcher) isStoreEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != StoreFileName {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (sw *StoreWatcher) handleStoreChange() {
	stat, err := os.Stat(sw.store.Path())
	if err != nil {
		return
	}
	if !stat.ModTime().After(sw.lastModTime) {
		return
	}
	sw.lastModTime = stat.ModTime()

	if err := sw.store.Reload(); err != nil {
		logrus.Warnf("failed to reload profile store: %v", err)
		return
	}

	sw.mu.RLock()
	callbacks := make([]func(*Store), len(sw.callbacks))
	copy(callbacks, sw.callbacks)
	sw.mu.RUnlock()

	for _, callback := range callbacks {
		callback(sw.store)
	}

	logrus.Debug("profile store reloaded")
}
