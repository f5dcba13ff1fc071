package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DBPath != "./data/syndic.db" {
		t.Errorf("Expected default DB path './data/syndic.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 30 {
		t.Errorf("Expected scheduler interval 30, got %d", cfg.SchedulerInterval)
	}
	if cfg.FetchTimeout != 15 {
		t.Errorf("Expected fetch timeout 15, got %d", cfg.FetchTimeout)
	}
	if cfg.UserAgent != "Syndic/1.0" {
		t.Errorf("Expected user agent 'Syndic/1.0', got '%s'", cfg.UserAgent)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}
}

func TestLoadArgsFlags(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--db-path", "/tmp/test.db",
		"--port", "9090",
		"--worker-count", "2",
		"--api-key", "test-key",
		"--log-level", "warn",
		"--debug",
	})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("Expected DB path '/tmp/test.db', got '%s'", cfg.DBPath)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("Expected worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.EffectiveLogLevel() != "debug" {
		t.Errorf("Expected debug to override log level, got '%s'", cfg.EffectiveLogLevel())
	}
}

func TestLoadArgsEnvironment(t *testing.T) {
	t.Setenv("FEEDS_DIR", "/etc/syndic/feeds")
	t.Setenv("FETCH_TIMEOUT", "45")

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.FeedsDir != "/etc/syndic/feeds" {
		t.Errorf("Expected feeds dir from environment, got '%s'", cfg.FeedsDir)
	}
	if cfg.FetchTimeout != 45 {
		t.Errorf("Expected fetch timeout 45, got %d", cfg.FetchTimeout)
	}
	if cfg.EffectiveLogLevel() != "info" {
		t.Errorf("Expected log level 'info', got '%s'", cfg.EffectiveLogLevel())
	}
}

func TestLoadArgsRejectsInvalidValues(t *testing.T) {
	invalid := [][]string{
		{"--worker-count", "0"},
		{"--scheduler-interval", "0"},
		{"--log-level", "loud"},
		{"--port"},
	}

	for _, args := range invalid {
		if _, err := LoadArgs(args); err == nil {
			t.Errorf("Expected error for args %v", args)
		}
	}
}
