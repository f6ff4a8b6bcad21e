package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultMoodsYAML contains the embedded mood catalog.
//
//go:embed defaults/moods.yaml
var DefaultMoodsYAML []byte
