package toml

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/bnema/obsidian-launcher/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	SettingsPathKey = "settings.path"

	appDirName       = "obsidian-launcher"
	settingsFile     = "settings.toml"
	settingsFileMode = 0o600
	settingsDirMode  = 0o700
	tempFilePattern  = ".settings-*.toml.tmp"
)

// Repository is the settings store backed by a TOML file. Values are read
// once at construction; every Set or SetMany writes the file atomically.
type Repository struct {
	settingsPath string
	mu           *sync.RWMutex
	values       map[string]string
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SettingsStore = (*Repository)(nil)

// DefaultSettingsPath is settings.toml under the user's XDG config
// directory.
func DefaultSettingsPath() string {
	return filepath.Join(xdg.ConfigHome, appDirName, settingsFile)
}

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}
	cfg.SetDefault(SettingsPathKey, DefaultSettingsPath())

	settingsPath := cfg.GetString(SettingsPathKey)
	if settingsPath == "" {
		return nil, errors.New("settings path is empty")
	}
	settingsPath, err := normalizeSettingsPath(settingsPath)
	if err != nil {
		return nil, err
	}

	repo := &Repository{settingsPath: settingsPath, mu: lockForPath(settingsPath)}

	repo.mu.RLock()
	file, err := repo.readSchema()
	repo.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	repo.values = file.Settings

	return repo, nil
}

func (r *Repository) Path() string {
	return r.settingsPath
}

func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[key]
	return value, ok, nil
}

// Set merges key into the file on disk so that writes made through other
// repositories on the same path are kept.
func (r *Repository) Set(ctx context.Context, key string, value string) error {
	return r.SetMany(ctx, map[string]string{key: value})
}

// SetMany merges values into the file on disk in a single atomic write.
func (r *Repository) SetMany(ctx context.Context, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	for key := range values {
		if key == "" {
			return errors.New("settings key is empty")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	maps.Copy(file.Settings, values)

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.writeSchema(file); err != nil {
		return err
	}

	r.values = maps.Clone(file.Settings)
	return nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.settingsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read settings file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode settings file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeSettingsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve settings path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.settingsPath), settingsDirMode); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode settings file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.settingsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp settings file: %w", err)
	}
	if err := tempFile.Chmod(settingsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp settings file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp settings file: %w", err)
	}

	if err := os.Rename(tempName, r.settingsPath); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	cleanup = false

	return nil
}
