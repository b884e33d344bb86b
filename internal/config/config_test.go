package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Channel.StrictReceiver {
		t.Error("Channel.StrictReceiver should be false by default")
	}
	if cfg.Channel.FreelistLimit != 256 {
		t.Errorf("Channel.FreelistLimit = %d, want 256", cfg.Channel.FreelistLimit)
	}

	if cfg.Bench.Producers != 8 {
		t.Errorf("Bench.Producers = %d, want 8", cfg.Bench.Producers)
	}
	if cfg.Bench.Messages != 10000 {
		t.Errorf("Bench.Messages = %d, want 10000", cfg.Bench.Messages)
	}
	if cfg.Bench.PayloadSize != 64 {
		t.Errorf("Bench.PayloadSize = %d, want 64", cfg.Bench.PayloadSize)
	}
	if !cfg.Bench.TUI {
		t.Error("Bench.TUI should be true by default")
	}

	if cfg.Watch.DebounceMs != 50 {
		t.Errorf("Watch.DebounceMs = %d, want 50", cfg.Watch.DebounceMs)
	}
	if len(cfg.Watch.Exclude) == 0 {
		t.Error("Watch.Exclude should ignore VCS and editor files by default")
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be false by default")
	}
}

func TestDurations(t *testing.T) {
	bench := BenchConfig{RecvTimeoutMs: 250}
	if got := bench.RecvTimeout(); got != 250*time.Millisecond {
		t.Errorf("RecvTimeout() = %v, want 250ms", got)
	}

	watch := WatchConfig{DebounceMs: 0}
	if got := watch.Debounce(); got != 0 {
		t.Errorf("Debounce() = %v, want 0", got)
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := ConfigDir(); got != "/custom/config/mpsc" {
			t.Errorf("ConfigDir() = %q, want %q", got, "/custom/config/mpsc")
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "mpsc")
		if got := ConfigDir(); got != expected {
			t.Errorf("ConfigDir() = %q, want %q", got, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := ConfigFile(); got != "/custom/config/mpsc/config.yaml" {
		t.Errorf("ConfigFile() = %q, want %q", got, "/custom/config/mpsc/config.yaml")
	}
}

func TestGet(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.Bench.Producers != 8 {
		t.Errorf("Get().Bench.Producers = %d, want 8", cfg.Bench.Producers)
	}
}

func TestLoad_Overrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	viper.Set("bench.producers", 3)
	viper.Set("channel.strict_receiver", true)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bench.Producers != 3 {
		t.Errorf("Bench.Producers = %d, want 3", cfg.Bench.Producers)
	}
	if !cfg.Channel.StrictReceiver {
		t.Error("Channel.StrictReceiver = false, want true")
	}
}

func TestLoad_InvalidFallsBack(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	viper.Set("bench.producers", 0)

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject zero producers")
	} else if _, ok := err.(ValidationErrors); !ok {
		t.Errorf("Load() error type = %T, want ValidationErrors", err)
	}
	if cfg := Get(); cfg.Bench.Producers != 8 {
		t.Errorf("Get() should fall back to defaults, got producers=%d", cfg.Bench.Producers)
	}
}

func TestWriteFileAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Bench.Producers = 12
	cfg.Watch.Include = []string{"**/*.go"}
	if err := cfg.WriteFile(path, false); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "producers: 12") {
		t.Errorf("expected snake_case YAML keys, got:\n%s", data)
	}

	if err := cfg.WriteFile(path, false); err == nil {
		t.Error("WriteFile() should refuse to overwrite without force")
	}
	if err := cfg.WriteFile(path, true); err != nil {
		t.Errorf("WriteFile(force) error = %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if loaded.Bench.Producers != 12 || len(loaded.Watch.Include) != 1 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestReadFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("bench:\n  producers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if cfg.Bench.Producers != 2 {
		t.Errorf("Bench.Producers = %d, want 2", cfg.Bench.Producers)
	}
	if cfg.Bench.Messages != 10000 {
		t.Errorf("Bench.Messages = %d, want default 10000", cfg.Bench.Messages)
	}
}
