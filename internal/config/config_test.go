package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 || cfg.Window.Height != 800 {
		t.Errorf("expected 1280x800 window, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.ScreenshotDir != "screenshots" {
		t.Errorf("expected screenshots dir, got %q", cfg.Window.ScreenshotDir)
	}
	if cfg.Viewer.TargetSize != 5 {
		t.Errorf("expected target size 5, got %g", cfg.Viewer.TargetSize)
	}
	if cfg.Viewer.CameraPosition != [3]float32{5, 5, 5} {
		t.Errorf("unexpected camera position %v", cfg.Viewer.CameraPosition)
	}
	if cfg.Registry.Timeout != 15*time.Second {
		t.Errorf("expected timeout 15s, got %v", cfg.Registry.Timeout)
	}
	if cfg.Panel.Addr != "" {
		t.Errorf("expected panel disabled by default, got %q", cfg.Panel.Addr)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  vsync: false

viewer:
  fov: 50
  target_size: 8
  background: [0, 0, 0, 1]
  camera_position: [0, 2, 10]

registry:
  base_url: "https://files.example.com"
  timeout: 5s

panel:
  addr: ":8090"

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Viewer.FOV != 50 || cfg.Viewer.TargetSize != 8 {
		t.Errorf("unexpected viewer section %+v", cfg.Viewer)
	}
	if cfg.Viewer.Near != 0.1 {
		t.Errorf("expected near to keep default 0.1, got %g", cfg.Viewer.Near)
	}
	if cfg.Viewer.CameraPosition != [3]float32{0, 2, 10} {
		t.Errorf("unexpected camera position %v", cfg.Viewer.CameraPosition)
	}
	if cfg.Registry.BaseURL != "https://files.example.com" {
		t.Errorf("unexpected base url %s", cfg.Registry.BaseURL)
	}
	if cfg.Registry.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Registry.Timeout)
	}
	if cfg.Panel.Addr != ":8090" {
		t.Errorf("expected panel addr :8090, got %s", cfg.Panel.Addr)
	}
	if cfg.Logging.LogFile != "viewer.log" {
		t.Errorf("expected log file 'viewer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero fov", func(c *Config) { c.Viewer.FOV = 0 }, "viewer.fov"},
		{"near after far", func(c *Config) { c.Viewer.Near = 10; c.Viewer.Far = 5 }, "viewer.far"},
		{"negative near", func(c *Config) { c.Viewer.Near = -1 }, "viewer.near"},
		{"zero target size", func(c *Config) { c.Viewer.TargetSize = 0 }, "viewer.target_size"},
		{"damping above one", func(c *Config) { c.Viewer.Damping = 2 }, "viewer.damping"},
		{"empty window", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"missing registry", func(c *Config) { c.Registry.BaseURL = "" }, "registry.base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "registry flag",
			setup: func() { *flagRegistry = "http://registry:9000" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Registry.BaseURL != "http://registry:9000" {
					t.Errorf("expected registry override, got %s", cfg.Registry.BaseURL)
				}
			},
			teardown: func() { *flagRegistry = "" },
		},
		{
			name:  "panel flag",
			setup: func() { *flagPanel = "127.0.0.1:8090" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Panel.Addr != "127.0.0.1:8090" {
					t.Errorf("expected panel override, got %s", cfg.Panel.Addr)
				}
			},
			teardown: func() { *flagPanel = "" },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("viewer:\n  near: 5\n  far: 1\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected validation error from Load")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Panel.Addr = ":9999"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Panel.Addr != ":9999" {
		t.Errorf("expected saved panel addr, got %q", loaded.Panel.Addr)
	}
}
