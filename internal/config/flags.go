package config

import "github.com/spf13/pflag"

var (
	flagConfig   = pflag.StringP("config", "c", "", "Path to config file")
	flagDebug    = pflag.Bool("debug", false, "Enable debug logging")
	flagRegistry = pflag.String("registry", "", "File registry base URL")
	flagPanel    = pflag.String("panel", "", "Serve the side-panel feed on this address")
	flagWidth    = pflag.Int("width", 0, "Window width")
	flagHeight   = pflag.Int("height", 0, "Window height")
	flagAsset    = pflag.StringP("asset", "a", "", "Identifier of the rendered asset to view")
	flagMetadata = pflag.StringP("metadata", "m", "", "Path to a metadata tree JSON file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	pflag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config.
func ConfigPath() string {
	return *flagConfig
}

// AssetID returns the asset identifier from --asset, falling back to the first positional argument.
func AssetID() string {
	if *flagAsset != "" {
		return *flagAsset
	}
	return pflag.Arg(0)
}

// MetadataPath returns the --metadata file path, empty when metadata should come from the registry.
func MetadataPath() string {
	return *flagMetadata
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRegistry != "" {
		cfg.Registry.BaseURL = *flagRegistry
	}
	if *flagPanel != "" {
		cfg.Panel.Addr = *flagPanel
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
}
