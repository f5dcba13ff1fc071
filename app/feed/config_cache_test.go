package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "test.yml", `
url: "https://example.com/feed.xml"

settings:
  enabled: true
  refresh_interval: 1800
  timeout: 20
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 feedConfig, got %d", configCache.GetConfigCount())
	}

	feedConfig, err := configCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.Name != "test" {
		t.Errorf("Expected name 'test', got '%s'", feedConfig.Name)
	}
	if feedConfig.URL != "https://example.com/feed.xml" {
		t.Errorf("Expected URL 'https://example.com/feed.xml', got '%s'", feedConfig.URL)
	}
	if feedConfig.Settings.RefreshDuration() != 1800*time.Second {
		t.Errorf("Expected refresh interval 1800s, got %v", feedConfig.Settings.RefreshDuration())
	}
	if feedConfig.Settings.TimeoutDuration() != 20*time.Second {
		t.Errorf("Expected timeout 20s, got %v", feedConfig.Settings.TimeoutDuration())
	}
	if !feedConfig.Settings.Enabled {
		t.Error("Expected feed to be enabled")
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "test.yml", `
url: "https://example.com/feed.xml"

settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	feedConfig, err := configCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.Settings.RefreshInterval != DefaultRefreshInterval {
		t.Errorf("Expected default refresh interval %d, got %d", DefaultRefreshInterval, feedConfig.Settings.RefreshInterval)
	}
	if feedConfig.Settings.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout %d, got %d", DefaultTimeout, feedConfig.Settings.Timeout)
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tempDir := t.TempDir()

	// Missing feed URL
	writeConfig(t, tempDir, "invalid.yml", `
settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Error("Expected error for invalid feedConfig")
	}
}

func TestConfigCacheEmptyDirectory(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 feedConfigs from empty directory, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "absent"))
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 feedConfigs, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheReloadConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "test.yml", `
url: "https://example.com/feed.xml"

settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if _, err := configCache.GetConfig("test"); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, tempDir, "test.yml", `
url: "https://example.com/new-feed.xml"

settings:
  enabled: false
  timeout: 5
`)

	reloadedConfig, err := configCache.LoadConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if reloadedConfig.URL != "https://example.com/new-feed.xml" {
		t.Errorf("Expected updated URL 'https://example.com/new-feed.xml', got '%s'", reloadedConfig.URL)
	}
	if reloadedConfig.Settings.Timeout != 5 {
		t.Errorf("Expected updated timeout 5, got %d", reloadedConfig.Settings.Timeout)
	}
	if len(configCache.GetEnabledConfigs()) != 0 {
		t.Error("Expected reloaded feed to be disabled")
	}

	if _, err = configCache.LoadConfig("nonexistent"); err == nil {
		t.Error("Expected error for non-existent config")
	}

	writeConfig(t, tempDir, "test.yml", `invalid yaml content`)

	if _, err = configCache.LoadConfig("test"); err == nil {
		t.Error("Expected error for invalid config file")
	}
}

func TestConfigCacheGetConfigs(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "feed1.yml", `
url: "https://example.com/feed1.xml"
settings:
  enabled: true
`)
	writeConfig(t, tempDir, "feed2.yml", `
url: "https://example.com/feed2.xml"
settings:
  enabled: false
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	allConfigs := configCache.GetConfigs()
	if len(allConfigs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(allConfigs))
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 || enabled["feed1"] == nil {
		t.Errorf("Expected only feed1 to be enabled, got %v", enabled)
	}

	// Modifying the returned map must not affect the cache
	delete(allConfigs, "feed1")
	if configCache.GetConfigCount() != 2 {
		t.Error("Modifying returned configs map affected the cache")
	}
}

func TestConfigCacheReportsEveryInvalidFile(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "good.yml", `
url: "https://example.com/good.xml"
`)
	writeConfig(t, tempDir, "no-url.yml", `
settings:
  enabled: true
`)
	writeConfig(t, tempDir, "bad-scheme.yml", `
url: "ftp://example.com/feed.xml"
`)

	configCache := NewConfigCache(tempDir)
	err := configCache.Run()
	if err == nil {
		t.Fatal("Expected error for invalid configs")
	}
	if !strings.Contains(err.Error(), "no-url.yml") || !strings.Contains(err.Error(), "bad-scheme.yml") {
		t.Errorf("Expected both invalid files in error, got: %v", err)
	}

	if _, err := configCache.GetConfig("good"); err != nil {
		t.Errorf("Expected valid config to be loaded, got: %v", err)
	}
}

func TestConfigCacheRejectsUnknownKeys(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "typo.yml", `
url: "https://example.com/feed.xml"
settings:
  refresh_intervall: 60
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err == nil {
		t.Error("Expected error for misspelled setting")
	}
}

func TestConfigCacheReadsYamlExtension(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "long.yaml", `
url: "https://example.com/long.xml"
`)
	writeConfig(t, tempDir, "both.yml", `
url: "https://example.com/yml.xml"
`)
	writeConfig(t, tempDir, "both.yaml", `
url: "https://example.com/yaml.xml"
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 configs, got %d", configCache.GetConfigCount())
	}

	both, err := configCache.GetConfig("both")
	if err != nil {
		t.Fatal(err)
	}
	if both.URL != "https://example.com/yml.xml" {
		t.Errorf("Expected .yml file to win, got URL '%s'", both.URL)
	}

	if _, err := configCache.LoadConfig("long"); err != nil {
		t.Errorf("Expected .yaml config to reload, got: %v", err)
	}
}

func TestConfigCacheDropsRemovedSubscriptions(t *testing.T) {
	tempDir := t.TempDir()

	writeConfig(t, tempDir, "keep.yml", `url: "https://example.com/keep.xml"`)
	writeConfig(t, tempDir, "gone.yml", `url: "https://example.com/gone.xml"`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(tempDir, "gone.yml")); err != nil {
		t.Fatal(err)
	}

	if _, err := configCache.LoadConfig("gone"); err == nil {
		t.Error("Expected error for removed config file")
	}
	if _, err := configCache.GetConfig("gone"); err == nil {
		t.Error("Expected removed subscription to be dropped from the cache")
	}

	writeConfig(t, tempDir, "gone.yml", `url: "https://example.com/gone.xml"`)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(tempDir, "keep.yml")); err != nil {
		t.Fatal(err)
	}
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}
	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected full reload to drop keep, got %d configs", configCache.GetConfigCount())
	}
}

func TestConfigValidateNil(t *testing.T) {
	var feedConfig *Config
	if err := feedConfig.Validate(); err == nil {
		t.Error("Expected error for nil feedConfig, got none")
	}
}

func TestConfigValidateRequiredFields(t *testing.T) {
	feedConfig := &Config{
		Name: "",
		URL:  "https://example.com/feed.xml",
	}
	if err := feedConfig.Validate(); err == nil {
		t.Error("Expected error for empty feed name, got none")
	}

	feedConfig.Name = "test-feed"
	feedConfig.URL = ""
	if err := feedConfig.Validate(); err == nil {
		t.Error("Expected error for empty URL, got none")
	}
}

func TestConfigValidateName(t *testing.T) {
	for _, name := range []string{"with space", "../escape", "-leading", "slash/name"} {
		if err := (&Config{Name: name, URL: "https://example.com/feed.xml"}).Validate(); err == nil {
			t.Errorf("Expected error for feed name %q, got none", name)
		}
	}

	for _, name := range []string{"hn", "Example.Feed_2", "a-b"} {
		if err := (&Config{Name: name, URL: "https://example.com/feed.xml"}).Validate(); err != nil {
			t.Errorf("Expected feed name %q to be valid, got: %v", name, err)
		}
	}
}

func TestConfigValidateURL(t *testing.T) {
	invalid := []string{
		"ftp://example.com/feed.xml",
		"example.com/feed.xml",
		"https://",
		"://broken",
	}

	for _, u := range invalid {
		if err := (&Config{Name: "test-feed", URL: u}).Validate(); err == nil {
			t.Errorf("Expected error for URL %q, got none", u)
		}
	}

	if err := (&Config{Name: "test-feed", URL: "http://example.com/rss"}).Validate(); err != nil {
		t.Errorf("Expected no error for valid URL, got: %v", err)
	}
}

func TestConfigValidateNegativeValues(t *testing.T) {
	feedConfig := &Config{
		Name: "test-feed",
		URL:  "https://example.com/feed.xml",
	}

	feedConfig.Settings.RefreshInterval = -1
	if err := feedConfig.Validate(); err == nil {
		t.Error("Expected error for negative refresh interval, got none")
	}

	feedConfig.Settings.RefreshInterval = 3600
	feedConfig.Settings.Timeout = -1
	if err := feedConfig.Validate(); err == nil {
		t.Error("Expected error for negative timeout, got none")
	}
}
