package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/whiteboard/backend-go/internal/document"
)

type Config struct {
	MaxLayers             int        `envconfig:"MAX_LAYERS" default:"100"`
	SelectionNetThreshold float64    `envconfig:"SELECTION_NET_THRESHOLD" default:"5"`
	InsertLayerThreshold  float64    `envconfig:"INSERT_LAYER_THRESHOLD" default:"5"`
	ShapeColor            string     `envconfig:"SHAPE_COLOR" default:"#fff"`
	PenColor              string     `envconfig:"PEN_COLOR" default:"#000"`
	TextColor             string     `envconfig:"TEXT_COLOR" default:"#000"`
	PencilSize            float64    `envconfig:"PENCIL_SIZE" default:"8"`
	SelfSelectionColor    string     `envconfig:"SELF_SELECTION_COLOR" default:"#3b82f6"`
	MaxImageBytes         int64      `envconfig:"MAX_IMAGE_BYTES" default:"131072"`
	LogLevel              slog.Level `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no environment is available,
// such as inside the browser.
func Default() *Config {
	return &Config{
		MaxLayers:             100,
		SelectionNetThreshold: 5,
		InsertLayerThreshold:  5,
		ShapeColor:            "#fff",
		PenColor:              "#000",
		TextColor:             "#000",
		PencilSize:            8,
		SelfSelectionColor:    "#3b82f6",
		MaxImageBytes:         128 * 1024,
		LogLevel:              slog.LevelInfo,
	}
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	if c.MaxLayers <= 0 {
		return fmt.Errorf("MAX_LAYERS must be positive, got %d", c.MaxLayers)
	}
	if c.PencilSize <= 0 {
		return fmt.Errorf("PENCIL_SIZE must be positive, got %v", c.PencilSize)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", c.MaxImageBytes)
	}
	for name, v := range map[string]string{
		"SHAPE_COLOR":          c.ShapeColor,
		"PEN_COLOR":            c.PenColor,
		"TEXT_COLOR":           c.TextColor,
		"SELF_SELECTION_COLOR": c.SelfSelectionColor,
	} {
		if _, err := document.ParseColor(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
