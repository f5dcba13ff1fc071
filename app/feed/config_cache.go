package feed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lysyi3m/syndic/app/logger"
	"gopkg.in/yaml.v3"
)

var configExtensions = []string{".yml", ".yaml"}

// ConfigCache holds the feed subscriptions loaded from a directory of YAML
// files, keyed by feed name.
type ConfigCache struct {
	feedsDir string

	mu      sync.RWMutex
	configs map[string]*Config
}

func NewConfigCache(feedsDir string) *ConfigCache {
	return &ConfigCache{
		feedsDir: feedsDir,
		configs:  make(map[string]*Config),
	}
}

// Run (re)loads every subscription file. Valid files replace the cache
// contents even when others fail; the failures are returned together.
func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.feedsDir); os.IsNotExist(err) {
		logger.L.Warnw("Feeds directory does not exist", "dir", cc.feedsDir)
		return nil
	}

	files, err := cc.configFiles()
	if err != nil {
		return err
	}

	loaded := make(map[string]*Config, len(files))
	var errs []error
	for name, path := range files {
		feedConfig, err := readConfig(name, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("error loading %s: %w", path, err))
			continue
		}
		loaded[name] = feedConfig

		logger.L.Debugw("Configuration loaded",
			"feed", name,
			"enabled", feedConfig.Settings.Enabled,
			"refresh_interval", feedConfig.Settings.RefreshInterval)
	}

	cc.mu.Lock()
	cc.configs = loaded
	cc.mu.Unlock()

	return errors.Join(errs...)
}

// LoadConfig re-reads one subscription file. A subscription whose file is
// gone is dropped from the cache.
func (cc *ConfigCache) LoadConfig(feedName string) (*Config, error) {
	path, err := cc.findConfigFile(feedName)
	if err != nil {
		cc.mu.Lock()
		delete(cc.configs, feedName)
		cc.mu.Unlock()
		return nil, err
	}

	feedConfig, err := readConfig(feedName, path)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cc.mu.Lock()
	cc.configs[feedName] = feedConfig
	cc.mu.Unlock()

	return feedConfig, nil
}

func (cc *ConfigCache) GetConfig(feedName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	if feedConfig, ok := cc.configs[feedName]; ok {
		return feedConfig, nil
	}
	return nil, fmt.Errorf("feed config with name '%s' not found", feedName)
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	return cc.filter(func(*Config) bool { return true })
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	return cc.filter(func(c *Config) bool { return c.Settings.Enabled })
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.configs)
}

func (cc *ConfigCache) filter(keep func(*Config) bool) map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	out := make(map[string]*Config, len(cc.configs))
	for name, c := range cc.configs {
		if keep(c) {
			out[name] = c
		}
	}
	return out
}

// configFiles maps feed names to their file. A name present under both
// extensions keeps the .yml file.
func (cc *ConfigCache) configFiles() (map[string]string, error) {
	files := make(map[string]string)
	for i := len(configExtensions) - 1; i >= 0; i-- {
		ext := configExtensions[i]
		matches, err := filepath.Glob(filepath.Join(cc.feedsDir, "*"+ext))
		if err != nil {
			return nil, fmt.Errorf("failed to find %s files: %w", ext, err)
		}
		for _, path := range matches {
			files[strings.TrimSuffix(filepath.Base(path), ext)] = path
		}
	}
	return files, nil
}

func (cc *ConfigCache) findConfigFile(feedName string) (string, error) {
	for _, ext := range configExtensions {
		path := filepath.Join(cc.feedsDir, feedName+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no config file for feed '%s' in %s", feedName, cc.feedsDir)
}

// readConfig decodes one file. Unknown keys are rejected.
func readConfig(feedName, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var feedConfig Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&feedConfig); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	feedConfig.Name = feedName
	feedConfig.applyDefaults()

	if err := feedConfig.Validate(); err != nil {
		return nil, err
	}
	return &feedConfig, nil
}
