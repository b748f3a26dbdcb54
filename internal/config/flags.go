package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed    = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen  = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth       = flag.Int("width", 0, "Window width")
	flagHeight      = flag.Int("height", 0, "Window height")
	flagDumpShaders = flag.String("dump-shaders", "", "Write generated shader sources to this directory")
	flagTexture     = flag.String("texture", "", "Image applied to meshes with texture coordinates")
	flagMode        = flag.String("material-mode", "", "Color term scalars replace: default|ambient|diffuse|ambient_and_diffuse")
	flagNoScalars   = flag.Bool("no-scalars", false, "Ignore point and cell colors")
	flagLogFile     = flag.String("log-file", "", "Also write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags overrides config values with any flags that were set.
// Zero-valued flags leave the config untouched.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagDumpShaders != "" {
		cfg.Render.ShaderDumpDir = *flagDumpShaders
	}
	if *flagTexture != "" {
		cfg.Render.Texture = *flagTexture
	}
	if *flagMode != "" {
		cfg.Render.MaterialMode = *flagMode
	}
	if *flagNoScalars {
		cfg.Render.ScalarVisibility = false
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
