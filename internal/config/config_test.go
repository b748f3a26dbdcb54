package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Render.MaterialMode != "default" {
		t.Errorf("expected material mode 'default', got %s", cfg.Render.MaterialMode)
	}
	if !cfg.Render.ScalarVisibility {
		t.Error("expected scalar visibility on by default")
	}
	if cfg.Render.ResolveCoincidentTopology != "polygon_offset" {
		t.Errorf("expected polygon_offset, got %s", cfg.Render.ResolveCoincidentTopology)
	}
	if cfg.Render.ShaderDumpDir != "" {
		t.Errorf("expected no shader dump dir, got %s", cfg.Render.ShaderDumpDir)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  title: "inspect"
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

render:
  material_mode: ambient_and_diffuse
  scalar_visibility: false
  scalar_mode: cell
  resolve_coincident_topology: "off"
  polygon_offset_factor: 2
  polygon_offset_units: 3
  max_texture_units: 8
  shader_dump_dir: /tmp/shaders
  texture: textures/wood.tga

logging:
  level: "debug"
  log_file: "meshview.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Title != "inspect" {
		t.Errorf("expected title 'inspect', got %s", cfg.Window.Title)
	}
	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}

	r := cfg.Render
	if r.MaterialMode != "ambient_and_diffuse" {
		t.Errorf("expected ambient_and_diffuse, got %s", r.MaterialMode)
	}
	if r.ScalarVisibility {
		t.Error("expected scalar visibility off")
	}
	if r.ScalarMode != "cell" {
		t.Errorf("expected scalar mode 'cell', got %s", r.ScalarMode)
	}
	if r.ResolveCoincidentTopology != "off" {
		t.Errorf("expected 'off', got %s", r.ResolveCoincidentTopology)
	}
	if r.PolygonOffsetFactor != 2 || r.PolygonOffsetUnits != 3 {
		t.Errorf("expected offset (2, 3), got (%v, %v)", r.PolygonOffsetFactor, r.PolygonOffsetUnits)
	}
	if r.MaxTextureUnits != 8 {
		t.Errorf("expected 8 texture units, got %d", r.MaxTextureUnits)
	}
	if r.ShaderDumpDir != "/tmp/shaders" {
		t.Errorf("expected dump dir /tmp/shaders, got %s", r.ShaderDumpDir)
	}
	if r.Texture != "textures/wood.tga" {
		t.Errorf("expected texture textures/wood.tga, got %s", r.Texture)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshview.log" {
		t.Errorf("expected log file 'meshview.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errs   []string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name: "bad size",
			mutate: func(c *Config) {
				c.Window.Width = 0
			},
			errs: []string{"window: invalid size"},
		},
		{
			name: "every render enum wrong",
			mutate: func(c *Config) {
				c.Render.MaterialMode = "emissive"
				c.Render.ScalarMode = "field"
				c.Render.ResolveCoincidentTopology = "shift_zbuffer"
			},
			errs: []string{"render.material_mode", "render.scalar_mode", "render.resolve_coincident_topology"},
		},
		{
			name: "negative units and bad level",
			mutate: func(c *Config) {
				c.Render.MaxTextureUnits = -1
				c.Logging.Level = "trace"
			},
			errs: []string{"render.max_texture_units", "logging.level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			got := multierr.Errors(err)
			if len(got) != len(tt.errs) {
				t.Fatalf("expected %d errors, got %d: %v", len(tt.errs), len(got), err)
			}
			for i, want := range tt.errs {
				if !strings.Contains(got[i].Error(), want) {
					t.Errorf("error %d: expected %q in %q", i, want, got[i])
				}
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
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
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
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Window.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 {
					t.Errorf("expected width 2560, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 1440 {
					t.Errorf("expected height 1440, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "dump shaders flag",
			setup: func() { *flagDumpShaders = "out/shaders" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Render.ShaderDumpDir != "out/shaders" {
					t.Errorf("expected dump dir out/shaders, got %s", cfg.Render.ShaderDumpDir)
				}
			},
			teardown: func() { *flagDumpShaders = "" },
		},
		{
			name: "render flags",
			setup: func() {
				*flagTexture = "wood.png"
				*flagMode = "ambient"
				*flagNoScalars = true
				*flagLogFile = "meshview.log"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Render.Texture != "wood.png" {
					t.Errorf("expected texture wood.png, got %s", cfg.Render.Texture)
				}
				if cfg.Render.MaterialMode != "ambient" {
					t.Errorf("expected material mode ambient, got %s", cfg.Render.MaterialMode)
				}
				if cfg.Render.ScalarVisibility {
					t.Error("expected scalar visibility off")
				}
				if cfg.Logging.LogFile != "meshview.log" {
					t.Errorf("expected log file meshview.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() {
				*flagTexture = ""
				*flagMode = ""
				*flagNoScalars = false
				*flagLogFile = ""
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
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

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

	// Width from the flag, height from the file.
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  title: from-env\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(EnvConfig, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Window.Title != "from-env" {
		t.Errorf("expected title from-env, got %s", cfg.Window.Title)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  scalar_mode: field\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected invalid scalar mode to be rejected")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Render.MaterialMode = "diffuse"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Render.MaterialMode != "diffuse" {
		t.Errorf("expected material mode 'diffuse' after reload, got %s", loaded.Render.MaterialMode)
	}

	cfg.Render.ScalarMode = "field"
	if err := cfg.SaveTo(path); err == nil {
		t.Error("expected invalid config to be refused")
	}
	reloaded := Default()
	if err := loadFromFile(reloaded, path); err != nil || reloaded.Render.ScalarMode != "default" {
		t.Errorf("refused save must leave the previous file intact, got %q (%v)", reloaded.Render.ScalarMode, err)
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("render:\n  scalar_visiblity: false\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, path); err == nil {
		t.Error("expected error for misspelled key, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Errorf("empty file should load as defaults, got %v", err)
	}
	if cfg.Window.Width != Default().Window.Width {
		t.Errorf("Width = %d, want default", cfg.Window.Width)
	}
}
