// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Camera   CameraConfig   `yaml:"camera"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// CameraConfig holds the startup camera and orbit controller settings.
type CameraConfig struct {
	FOV                float32    `yaml:"fov"` // Vertical field of view, degrees
	Near               float32    `yaml:"near"`
	Far                float32    `yaml:"far"`
	Position           [3]float32 `yaml:"position"`
	Target             [3]float32 `yaml:"target"`
	ScreenSpacePanning bool       `yaml:"screen_space_panning"`
}

// ViewerConfig holds avatar loading and overlay settings.
type ViewerConfig struct {
	Model               string        `yaml:"model"`      // Avatar identifier (vrmModel)
	Query               string        `yaml:"query"`      // Raw query string, e.g. "vrmModel=astolfo"
	ModelRoot           string        `yaml:"model_root"` // Document root holding models/
	AssetBaseURL        string        `yaml:"asset_base_url"`
	FadeDelay           time.Duration `yaml:"fade_delay"`
	FadeDuration        time.Duration `yaml:"fade_duration"`
	SimulateSpringBones bool          `yaml:"simulate_spring_bones"`
	ProgressFeedAddr    string        `yaml:"progress_feed_addr"`
	ScreenshotDir       string        `yaml:"screenshot_dir"`
}

// ServerConfig holds model server settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	ModelRoot string `yaml:"model_root"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Camera: CameraConfig{
			FOV:                30.0,
			Near:               0.1,
			Far:                20.0,
			Position:           [3]float32{0, 1, 5},
			Target:             [3]float32{0, 1, 0},
			ScreenSpacePanning: true,
		},
		Viewer: ViewerConfig{
			ModelRoot:     ".",
			FadeDelay:     2050 * time.Millisecond,
			FadeDuration:  2 * time.Second,
			ScreenshotDir: "screenshots",
		},
		Server: ServerConfig{
			Addr:      ":8080",
			ModelRoot: ".",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
