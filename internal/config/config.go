// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Registry RegistryConfig `yaml:"registry"`
	Panel    PanelConfig    `yaml:"panel"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds the native window settings.
type WindowConfig struct {
	Title         string `yaml:"title"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	VSync         bool   `yaml:"vsync"`
	ScreenshotDir string `yaml:"screenshot_dir"` // F12 captures land here
}

// ViewerConfig holds camera, lighting and picking settings for a viewer session.
type ViewerConfig struct {
	FOV            float32    `yaml:"fov"` // Vertical field of view, degrees
	Near           float32    `yaml:"near"`
	Far            float32    `yaml:"far"`
	Background     [4]float32 `yaml:"background"`
	TargetSize     float32    `yaml:"target_size"` // Largest model extent after normalization
	CameraPosition [3]float32 `yaml:"camera_position"`
	Damping        float32    `yaml:"damping"`
	GridSize       float32    `yaml:"grid_size"`
	GridDivisions  int        `yaml:"grid_divisions"`
	HighlightColor [4]float32 `yaml:"highlight_color"`
	AmbientLight   float32    `yaml:"ambient_light"`
	DirectionalSun float32    `yaml:"directional_light"`
}

// RegistryConfig holds the file registry API settings.
type RegistryConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PanelConfig holds the side-panel websocket feed settings. An empty Addr disables it.
type PanelConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:         "stepview",
			Width:         1280,
			Height:        800,
			VSync:         true,
			ScreenshotDir: "screenshots",
		},
		Viewer: ViewerConfig{
			FOV:            75,
			Near:           0.1,
			Far:            1000,
			Background:     [4]float32{0.94, 0.94, 0.94, 1},
			TargetSize:     5,
			CameraPosition: [3]float32{5, 5, 5},
			Damping:        0.05,
			GridSize:       10,
			GridDivisions:  10,
			HighlightColor: [4]float32{1, 0.6, 0, 1},
			AmbientLight:   0.6,
			DirectionalSun: 0.8,
		},
		Registry: RegistryConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	v := c.Viewer
	var errs []error
	if v.FOV <= 0 || v.FOV >= 180 {
		errs = append(errs, fmt.Errorf("viewer.fov must be in (0, 180), got %g", v.FOV))
	}
	if v.Near <= 0 {
		errs = append(errs, fmt.Errorf("viewer.near must be positive, got %g", v.Near))
	}
	if v.Far <= v.Near {
		errs = append(errs, fmt.Errorf("viewer.far (%g) must exceed viewer.near (%g)", v.Far, v.Near))
	}
	if v.TargetSize <= 0 {
		errs = append(errs, fmt.Errorf("viewer.target_size must be positive, got %g", v.TargetSize))
	}
	if v.Damping < 0 || v.Damping > 1 {
		errs = append(errs, fmt.Errorf("viewer.damping must be in [0, 1], got %g", v.Damping))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Registry.BaseURL == "" {
		errs = append(errs, errors.New("registry.base_url is required"))
	}
	return errors.Join(errs...)
}
