// Package config loads tuning parameters for the synthetic-data generator.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// GeneratorConfig holds tuning parameters for synthetic image generation.
// All fields are optional in the JSON file; the Get* methods supply
// defaults, so partial configs are safe.
type GeneratorConfig struct {
	// Render params
	BaseWindowWidth  *int    `json:"base_window_width,omitempty"`
	BaseWindowHeight *int    `json:"base_window_height,omitempty"`
	DefaultColor     *string `json:"default_color,omitempty"`

	// MeshColors maps a mesh identifier (file base name without extension)
	// to a hex render color. Meshes not listed render in the default color.
	MeshColors map[string]string `json:"mesh_colors,omitempty"`

	// Scale params. Meshes whose identifier contains the marker token get
	// the marker scale range; all others get the standard range.
	MarkerToken    *string  `json:"marker_token,omitempty"`
	MarkerScaleMin *float64 `json:"marker_scale_min,omitempty"`
	MarkerScaleMax *float64 `json:"marker_scale_max,omitempty"`
	ScaleMin       *float64 `json:"scale_min,omitempty"`
	ScaleMax       *float64 `json:"scale_max,omitempty"`

	// Labeling params. LegacyHalfWidthBoxes reproduces the historical
	// behavior of writing half the raster width as both box dimensions
	// instead of the true raster extent.
	LegacyHalfWidthBoxes *bool `json:"legacy_half_width_boxes,omitempty"`

	// Seed fixes the random source for reproducible runs. Zero or absent
	// means seed from the current time.
	Seed *int64 `json:"seed,omitempty"`
}

// Defaults for all generator parameters.
const (
	DefaultBaseWindowWidth  = 1024
	DefaultBaseWindowHeight = 768
	DefaultColor            = "#FFFFFF"
	DefaultMarkerToken      = "lid"
	DefaultMarkerScaleMin   = 0.22
	DefaultMarkerScaleMax   = 0.30
	DefaultScaleMin         = 0.05
	DefaultScaleMax         = 0.22
)

// EmptyGeneratorConfig returns a GeneratorConfig with all fields unset.
func EmptyGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{}
}

// LoadGeneratorConfig loads a GeneratorConfig from a JSON file. The file must
// have a .json extension and stay under the max file size.
func LoadGeneratorConfig(path string) (*GeneratorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyGeneratorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *GeneratorConfig) validate() error {
	if c.GetScaleMin() <= 0 || c.GetScaleMax() < c.GetScaleMin() {
		return fmt.Errorf("invalid scale range [%v, %v]", c.GetScaleMin(), c.GetScaleMax())
	}
	if c.GetMarkerScaleMin() <= 0 || c.GetMarkerScaleMax() < c.GetMarkerScaleMin() {
		return fmt.Errorf("invalid marker scale range [%v, %v]", c.GetMarkerScaleMin(), c.GetMarkerScaleMax())
	}
	if c.GetBaseWindowWidth() <= 0 || c.GetBaseWindowHeight() <= 0 {
		return fmt.Errorf("invalid base window %dx%d", c.GetBaseWindowWidth(), c.GetBaseWindowHeight())
	}
	return nil
}

// GetBaseWindowWidth returns the render window width in pixels.
func (c *GeneratorConfig) GetBaseWindowWidth() int {
	if c.BaseWindowWidth != nil {
		return *c.BaseWindowWidth
	}
	return DefaultBaseWindowWidth
}

// GetBaseWindowHeight returns the render window height in pixels.
func (c *GeneratorConfig) GetBaseWindowHeight() int {
	if c.BaseWindowHeight != nil {
		return *c.BaseWindowHeight
	}
	return DefaultBaseWindowHeight
}

// GetDefaultColor returns the render color for meshes without an explicit entry.
func (c *GeneratorConfig) GetDefaultColor() string {
	if c.DefaultColor != nil {
		return *c.DefaultColor
	}
	return DefaultColor
}

// ColorFor returns the render color for the given mesh identifier.
func (c *GeneratorConfig) ColorFor(meshID string) string {
	if color, ok := c.MeshColors[meshID]; ok {
		return color
	}
	return c.GetDefaultColor()
}

// GetMarkerToken returns the substring that selects the marker scale range.
func (c *GeneratorConfig) GetMarkerToken() string {
	if c.MarkerToken != nil {
		return *c.MarkerToken
	}
	return DefaultMarkerToken
}

// GetMarkerScaleMin returns the lower scale bound for marker meshes.
func (c *GeneratorConfig) GetMarkerScaleMin() float64 {
	if c.MarkerScaleMin != nil {
		return *c.MarkerScaleMin
	}
	return DefaultMarkerScaleMin
}

// GetMarkerScaleMax returns the upper scale bound for marker meshes.
func (c *GeneratorConfig) GetMarkerScaleMax() float64 {
	if c.MarkerScaleMax != nil {
		return *c.MarkerScaleMax
	}
	return DefaultMarkerScaleMax
}

// GetScaleMin returns the lower scale bound for standard meshes.
func (c *GeneratorConfig) GetScaleMin() float64 {
	if c.ScaleMin != nil {
		return *c.ScaleMin
	}
	return DefaultScaleMin
}

// GetScaleMax returns the upper scale bound for standard meshes.
func (c *GeneratorConfig) GetScaleMax() float64 {
	if c.ScaleMax != nil {
		return *c.ScaleMax
	}
	return DefaultScaleMax
}

// GetLegacyHalfWidthBoxes reports whether label boxes use the historical
// half-raster-width dimensions.
func (c *GeneratorConfig) GetLegacyHalfWidthBoxes() bool {
	if c.LegacyHalfWidthBoxes != nil {
		return *c.LegacyHalfWidthBoxes
	}
	return false
}

// GetSeed returns the configured random seed, or 0 when unset.
func (c *GeneratorConfig) GetSeed() int64 {
	if c.Seed != nil {
		return *c.Seed
	}
	return 0
}
