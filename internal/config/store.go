package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	StoreFileName  = "codex_profiles.json"
	ConfigFileName = "config.toml"
	AuthFileName   = "auth.json"
	LogFileName    = "codex_switcher.log"

	officialBaseURL = "https://api.openai.com/v1"

	AccountTypeOfficial = "official"
	AccountTypeProxy    = "proxy"
	AccountTypeTeam     = "team"

	teamActivePrefix = "team:"
)

// DefaultDir returns the Codex configuration directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codex"
	}
	return filepath.Join(home, ".codex")
}

// Profile is one stored credential set.
type Profile struct {
	UUID        string `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	BaseURL     string `json:"base_url" yaml:"base_url"`
	APIKey      string `json:"api_key" yaml:"api_key"`
	OrgID       string `json:"org_id,omitempty" yaml:"org_id,omitempty"`
	AccountType string `json:"account_type,omitempty" yaml:"account_type,omitempty"`
}

// Account is a named profile as presented to callers, with its team flag
// resolved.
type Account struct {
	Name   string `json:"name" yaml:"name"`
	IsTeam bool   `json:"is_team" yaml:"is_team"`
	Profile
}

type storeData struct {
	Profiles map[string]Profile `json:"profiles"`
	Teams    map[string]Profile `json:"teams"`
	Active   *string            `json:"active"`
}

// Store manages the profile store file. All operations are safe for
// concurrent use; every mutation is persisted immediately.
type Store struct {
	path string
	mu   sync.RWMutex
	data storeData
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	dir string
}

// WithDir sets a custom store directory.
func WithDir(dir string) StoreOption {
	return func(o *storeOptions) { o.dir = dir }
}

// NewStore opens (or initializes) the profile store. A corrupt store file is
// replaced with an empty template rather than failing, matching what users
// expect from a desktop utility.
func NewStore(opts ...StoreOption) (*Store, error) {
	options := &storeOptions{dir: DefaultDir()}
	for _, opt := range opts {
		opt(options)
	}
	if err := os.MkdirAll(options.dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	s := &Store{path: filepath.Join(options.dir, StoreFileName)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory holding the store file.
func (s *Store) Dir() string {
	return filepath.Dir(s.path)
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	s.data = storeData{
		Profiles: map[string]Profile{},
		Teams:    map[string]Profile{},
	}
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read profile store: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(raw, &data); err != nil {
		logrus.Warnf("profile store %s is corrupt, recreating from empty template: %v", s.path, err)
		return nil
	}
	if data.Profiles == nil {
		data.Profiles = map[string]Profile{}
	}
	if data.Teams == nil {
		data.Teams = map[string]Profile{}
	}
	s.data = data
	return nil
}

// Reload re-reads the store file, discarding in-memory state. Used by the
// watcher when another process rewrote the file.
func (s *Store) Reload() error {
	return s.load()
}

func (s *Store) saveLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile store: %w", err)
	}
	if err := os.WriteFile(s.path, append(raw, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write profile store: %w", err)
	}
	return nil
}

// accountType infers the display type when a profile does not carry one.
func accountType(p Profile) string {
	if p.AccountType != "" {
		return p.AccountType
	}
	if p.BaseURL == officialBaseURL {
		return AccountTypeOfficial
	}
	return AccountTypeProxy
}

// Accounts lists all stored accounts, teams first, each group sorted by name.
func (s *Store) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]Account, 0, len(s.data.Teams)+len(s.data.Profiles))
	for _, name := range sortedKeys(s.data.Teams) {
		p := s.data.Teams[name]
		p.AccountType = AccountTypeTeam
		accounts = append(accounts, Account{Name: name, IsTeam: true, Profile: p})
	}
	for _, name := range sortedKeys(s.data.Profiles) {
		p := s.data.Profiles[name]
		p.AccountType = accountType(p)
		accounts = append(accounts, Account{Name: name, IsTeam: false, Profile: p})
	}
	return accounts
}

func sortedKeys(m map[string]Profile) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get looks up one account by name, preferring the team entry when both exist.
func (s *Store) Get(name string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.data.Teams[name]; ok {
		p.AccountType = AccountTypeTeam
		return Account{Name: name, IsTeam: true, Profile: p}, true
	}
	if p, ok := s.data.Profiles[name]; ok {
		p.AccountType = accountType(p)
		return Account{Name: name, IsTeam: false, Profile: p}, true
	}
	return Account{}, false
}

// Active returns the currently active account, if any.
func (s *Store) Active() (Account, bool) {
	s.mu.RLock()
	active := s.data.Active
	s.mu.RUnlock()
	if active == nil || *active == "" {
		return Account{}, false
	}

	name := *active
	if strings.HasPrefix(name, teamActivePrefix) {
		name = strings.TrimPrefix(name, teamActivePrefix)
		s.mu.RLock()
		p, ok := s.data.Teams[name]
		s.mu.RUnlock()
		if !ok {
			return Account{}, false
		}
		p.AccountType = AccountTypeTeam
		return Account{Name: name, IsTeam: true, Profile: p}, true
	}

	s.mu.RLock()
	p, ok := s.data.Profiles[name]
	s.mu.RUnlock()
	if !ok {
		return Account{}, false
	}
	p.AccountType = accountType(p)
	return Account{Name: name, IsTeam: false, Profile: p}, true
}

// SetActive marks an account as active and persists the store.
func (s *Store) SetActive(account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.Name == "" {
		s.data.Active = nil
	} else {
		name := account.Name
		if account.IsTeam {
			name = teamActivePrefix + name
		}
		s.data.Active = &name
	}
	return s.saveLocked()
}

// Upsert adds or replaces an account. A name is unique across both groups, so
// changing the team flag moves the entry between them.
func (s *Store) Upsert(name string, p Profile, isTeam bool) error {
	if name == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	if isTeam {
		delete(s.data.Profiles, name)
		s.data.Teams[name] = p
	} else {
		delete(s.data.Teams, name)
		s.data.Profiles[name] = p
	}
	return s.saveLocked()
}

// Delete removes an account and clears the active pointer when it referenced
// the removed entry.
func (s *Store) Delete(account Account) error {
	if account.Name == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if account.IsTeam {
		delete(s.data.Teams, account.Name)
	} else {
		delete(s.data.Profiles, account.Name)
	}
	if s.data.Active != nil {
		if *s.data.Active == account.Name || *s.data.Active == teamActivePrefix+account.Name {
			s.data.Active = nil
		}
	}
	return s.saveLocked()
}
