package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultBlacklistYAML contains the embedded default keyword rules.
//
//go:embed defaults/blacklist.yaml
var DefaultBlacklistYAML []byte
