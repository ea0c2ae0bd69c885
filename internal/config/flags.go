package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagModel      = flag.String("vrmModel", "", "Avatar identifier to load (models/<id>.vrm)")
	flagQuery      = flag.String("query", "", "Query string carrying vrmModel, e.g. \"vrmModel=astolfo\"")
	flagModels     = flag.String("models", "", "Document root containing the models directory")
	flagAssetBase  = flag.String("asset-base", "", "Fetch models over HTTP from this base URL")
	flagFeed       = flag.String("feed", "", "Serve load progress over websocket on this address")
	flagAddr       = flag.String("addr", "", "Model server listen address")
	flagSave       = flag.Bool("save-config", false, "Write the effective config to the user config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagModel != "" {
		cfg.Viewer.Model = *flagModel
	}
	if *flagQuery != "" {
		cfg.Viewer.Query = *flagQuery
	}
	if *flagModels != "" {
		cfg.Viewer.ModelRoot = *flagModels
		cfg.Server.ModelRoot = *flagModels
	}
	if *flagAssetBase != "" {
		cfg.Viewer.AssetBaseURL = *flagAssetBase
	}
	if *flagFeed != "" {
		cfg.Viewer.ProgressFeedAddr = *flagFeed
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
}
