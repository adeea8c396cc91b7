package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration shared by all examples. A
// missing config file is not an error; defaults apply.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Assets   AssetsConfig   `toml:"assets"`
	LogLevel string         `toml:"log_level"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	X      uint32 `toml:"x"`
	Y      uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type RendererConfig struct {
	// FramesInFlight bounds how many frames the host may record ahead
	// of the GPU. Must be 2 or 3.
	FramesInFlight uint32 `toml:"frames_in_flight"`
	Validation     bool   `toml:"validation"`
	// VSync prefers FIFO presentation over mailbox when set.
	VSync bool `toml:"vsync"`
}

type AssetsConfig struct {
	Dir string `toml:"dir"`
}

func Default(title string) *Config {
	return &Config{
		Window: WindowConfig{
			Title:  title,
			X:      100,
			Y:      100,
			Width:  800,
			Height: 600,
		},
		Renderer: RendererConfig{
			FramesInFlight: 2,
			Validation:     false,
			VSync:          false,
		},
		Assets: AssetsConfig{
			Dir: "assets",
		},
		LogLevel: "info",
	}
}

// Load reads a TOML config file on top of the defaults. A missing file
// yields the defaults unchanged.
func Load(path, title string) (*Config, error) {
	cfg := Default(title)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Renderer.FramesInFlight < 2 || c.Renderer.FramesInFlight > 3 {
		return fmt.Errorf("frames_in_flight must be 2 or 3, got %d", c.Renderer.FramesInFlight)
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size must be non-zero, got %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}
