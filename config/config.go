package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Settings is the persisted application configuration.
type Settings struct {
	ListenAddr   string         `json:"listenAddr"`
	DatabasePath string         `json:"databasePath"`
	LogPath      string         `json:"logPath"`
	Auth         AuthSettings   `json:"auth"`
	Ollama       OllamaSettings `json:"ollama"`
}

// AuthSettings configures session token issuance.
type AuthSettings struct {
	JWTSecret         string `json:"jwtSecret"`
	SessionTTLMinutes int    `json:"sessionTTLMinutes"`
}

// OllamaSettings configures the optional local recommendation model.
type OllamaSettings struct {
	BaseURL        string `json:"baseUrl"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// DefaultSettings returns the configuration used when no settings file
// exists yet.
func DefaultSettings() Settings {
	return Settings{
		ListenAddr:   ":8282",
		DatabasePath: "daybook.db",
		LogPath:      "",
		Auth: AuthSettings{
			JWTSecret:         "",
			SessionTTLMinutes: 12 * 60,
		},
		Ollama: OllamaSettings{
			BaseURL:        "http://localhost:11434",
			Model:          "mistral",
			TimeoutSeconds: 60,
		},
	}
}

// Manager loads and saves the JSON settings file.
type Manager struct {
	fs   afero.Fs
	path string
	mu   sync.RWMutex
}

// NewManager creates a manager reading and writing the given path on the
// real filesystem.
func NewManager(path string) *Manager {
	return NewManagerFS(afero.NewOsFs(), path)
}

// NewManagerFS creates a manager on an arbitrary filesystem. Tests use an
// in-memory fs.
func NewManagerFS(fs afero.Fs, path string) *Manager {
	return &Manager{fs: fs, path: path}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// Exists reports whether the settings file is present.
func (m *Manager) Exists() (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return afero.Exists(m.fs, m.path)
}

// Load reads and parses the settings file.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings file: %w", err)
	}
	return settings, nil
}

// Save writes the settings file, creating parent directories as needed.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(m.path)
	if dir != "" && dir != "." {
		if err := m.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	if err := afero.WriteFile(m.fs, m.path, data, 0644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
