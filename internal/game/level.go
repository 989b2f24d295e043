package game

import (
	"encoding/json"
	"fmt"
	"os"
)

// PlatformConfig is one entry of a level definition, covering a rectangle
// of tiles
type PlatformConfig struct {
	GridX         float64 `json:"grid_x"`
	GridY         float64 `json:"grid_y"`
	WidthInTiles  int     `json:"width_in_tiles"`
	HeightInTiles int     `json:"height_in_tiles"`
	PlatformType  string  `json:"platform_type"`
}

// DefaultLevel is the built-in level used when no level file is given
var DefaultLevel = []PlatformConfig{
	{GridX: 0, GridY: 29, WidthInTiles: 40, HeightInTiles: 1, PlatformType: "normal"},
	{GridX: 5, GridY: 22, WidthInTiles: 3, HeightInTiles: 1, PlatformType: "normal"},
	{GridX: 8, GridY: 11, WidthInTiles: 2, HeightInTiles: 1, PlatformType: "normal"},
	{GridX: 10, GridY: 16, WidthInTiles: 5, HeightInTiles: 1, PlatformType: "deadly"},
	{GridX: 20, GridY: 22, WidthInTiles: 10, HeightInTiles: 1, PlatformType: "gravity"},
	{GridX: 40, GridY: 22, WidthInTiles: 1, HeightInTiles: 10, PlatformType: "normal"},
}

// BuildPlatforms expands level configs into platform instances, one per
// tile, so breakable tiles crumble individually
func BuildPlatforms(configs []PlatformConfig) ([]*Platform, error) {
	var platforms []*Platform
	for i, config := range configs {
		platformType := config.PlatformType
		if platformType == "" {
			platformType = string(PlatformNormal)
		}
		parsed, err := ParsePlatformType(platformType)
		if err != nil {
			return nil, fmt.Errorf("level entry %d: %w", i, err)
		}
		for dx := 0; dx < config.WidthInTiles; dx++ {
			for dy := 0; dy < config.HeightInTiles; dy++ {
				platforms = append(platforms, NewPlatform(config.GridX+float64(dx), config.GridY+float64(dy), 1, 1, parsed))
			}
		}
	}
	return platforms, nil
}

// LoadLevel reads a level definition from a JSON file
func LoadLevel(path string) ([]PlatformConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}
	var configs []PlatformConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse level file %s: %w", path, err)
	}
	if len(configs) == 0 {
		return nil, fmt.Errorf("level file %s defines no platforms", path)
	}
	return configs, nil
}
