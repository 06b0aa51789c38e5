package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yuanzhangdck/azure-glass/model"
)

const defaultPassword = "password"

// NewService creates a store rooted at dataDir, creating the
// directory if needed.
func NewService(dataDir string) (*service, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &service{
		accountPath: filepath.Join(dataDir, "accounts.json"),
		configPath:  filepath.Join(dataDir, "config.json"),
	}, nil
}

type panelConfig struct {
	Password string `json:"password"`
}

// List implements store.StoreService. It never returns credentials.
func (s *service) List() ([]model.AccountSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return nil, err
	}

	summaries := make([]model.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, a.Summary())
	}
	return summaries, nil
}

// Get implements store.StoreService.
func (s *service) Get(id string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return model.Account{}, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Account{}, &model.NotFoundError{Kind: "account", ID: id}
}

// Create implements store.StoreService.
func (s *service) Create(name, remark string, creds model.Credentials, socks5 string) (model.Account, error) {
	if err := creds.Validate(); err != nil {
		return model.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return model.Account{}, err
	}

	now := time.Now().UTC()
	account := model.Account{
		ID:          model.NewAccountID(now),
		Name:        name,
		Remark:      remark,
		Credentials: creds,
		Socks5:      socks5,
		CreatedAt:   now,
	}
	accounts = append(accounts, account)

	if err := s.save(accounts); err != nil {
		return model.Account{}, err
	}
	return account, nil
}

// Update implements store.StoreService. Provided fields are merged;
// a replaced credential bundle is re-validated as a whole.
func (s *service) Update(id string, patch AccountPatch) (model.Account, error) {
	if patch.Credentials != nil {
		if err := patch.Credentials.Validate(); err != nil {
			return model.Account{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return model.Account{}, err
	}

	for i, a := range accounts {
		if a.ID != id {
			continue
		}
		if patch.Name != nil {
			a.Name = *patch.Name
		}
		if patch.Remark != nil {
			a.Remark = *patch.Remark
		}
		if patch.Credentials != nil {
			a.Credentials = *patch.Credentials
		}
		if patch.Socks5 != nil {
			a.Socks5 = *patch.Socks5
		}
		accounts[i] = a
		if err := s.save(accounts); err != nil {
			return model.Account{}, err
		}
		return a, nil
	}
	return model.Account{}, &model.NotFoundError{Kind: "account", ID: id}
}

// Delete implements store.StoreService. Callers must evict the client
// cache entry for the id afterwards so no stale credentialed clients
// linger.
func (s *service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.load()
	if err != nil {
		return err
	}

	for i, a := range accounts {
		if a.ID == id {
			accounts = append(accounts[:i], accounts[i+1:]...)
			return s.save(accounts)
		}
	}
	return &model.NotFoundError{Kind: "account", ID: id}
}

// Password implements store.StoreService, initializing config.json
// with the default password on first read.
func (s *service) Password() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.Password, nil
}

// SetPassword implements store.StoreService.
func (s *service) SetPassword(newPassword string) error {
	if len(newPassword) < 5 {
		return &model.ValidationError{Message: "password too short"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	cfg.Password = newPassword
	return s.saveJSON(s.configPath, cfg)
}

func (s *service) load() ([]model.Account, error) {
	data, err := os.ReadFile(s.accountPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	var accounts []model.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	return accounts, nil
}

func (s *service) save(accounts []model.Account) error {
	return s.saveJSON(s.accountPath, accounts)
}

func (s *service) loadConfig() (panelConfig, error) {
	data, err := os.ReadFile(s.configPath)
	if os.IsNotExist(err) {
		cfg := panelConfig{Password: defaultPassword}
		if err := s.saveJSON(s.configPath, cfg); err != nil {
			return panelConfig{}, err
		}
		return cfg, nil
	}
	if err != nil {
		return panelConfig{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg panelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return panelConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Password == "" {
		cfg.Password = defaultPassword
	}
	return cfg, nil
}

func (s *service) saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
