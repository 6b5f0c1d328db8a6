package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Width:         intPtr(32),
				StateDir:      "/file/state",
				LogLevel:      "warn",
				Format:        "hex",
				WatchDebounce: "250ms",
				Verbose:       &trueVal,
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			expected: Config{
				Width:         32,
				StateDir:      "/file/state",
				LogLevel:      "warn",
				Format:        "hex",
				WatchDebounce: 250 * time.Millisecond,
				Verbose:       true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Width:  intPtr(32),
				Format: "epochs",
			},
			changed: map[string]bool{"width": true},
			initial: Config{Width: 64, Format: "binary"},
			expected: Config{
				Width:  64, // unchanged because flag was set
				Format: "epochs",
			},
		},
		{
			name:       "zero values leave defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "zero width is applied",
			fileConfig: FileConfig{Width: intPtr(0)},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   func() Config { c := DefaultConfig(); c.Width = 0; return c }(),
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{WatchDebounce: "soon"},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
width = 32
state_dir = "/var/lib/epochbits"
log_level = "debug"
format = "epochs"
watch_debounce = "1s"
verbose = true
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Width == nil || *fc.Width != 32 {
		t.Errorf("Width = %v, want 32", fc.Width)
	}
	if fc.StateDir != "/var/lib/epochbits" {
		t.Errorf("StateDir = %v, want /var/lib/epochbits", fc.StateDir)
	}
	if fc.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", fc.LogLevel)
	}
	if fc.Format != "epochs" {
		t.Errorf("Format = %v, want epochs", fc.Format)
	}
	if fc.WatchDebounce != "1s" {
		t.Errorf("WatchDebounce = %v, want 1s", fc.WatchDebounce)
	}
	if fc.Verbose == nil || *fc.Verbose != true {
		t.Errorf("Verbose = %v, want true", fc.Verbose)
	}
}

func TestFileConfig_OutOfRangeWidthFailsValidate(t *testing.T) {
	for _, content := range []string{"width = 0\n", "width = -5\n"} {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test config file: %v", err)
		}
		fc, err := LoadFileConfig(configPath)
		if err != nil {
			t.Fatalf("LoadFileConfig(%q) error = %v", content, err)
		}

		cfg := DefaultConfig()
		if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
			t.Fatalf("ApplyFileConfig(%q) error = %v", content, err)
		}
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate() with %q = nil, want width error", content)
		}
	}
}

func TestLoadFileConfig_MissingWidth(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("format = \"hex\"\n"), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if fc.Width != nil {
		t.Errorf("Width = %v, want nil", *fc.Width)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	if _, err := LoadFileConfig("/nonexistent/path/config.toml"); err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.toml")
	if err := os.WriteFile(configPath, []byte("width = 32\nthis is not valid toml\n"), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	if _, err := LoadFileConfig(configPath); err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path != "" && !strings.Contains(path, ".epochbits") {
		t.Errorf("DefaultConfigPath() = %v, should contain .epochbits", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")
	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}
	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}

func intPtr(v int) *int { return &v }
