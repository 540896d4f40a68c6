// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the platform config directory when set.
		ConfigDirPath string
		// WorkDir is searched for config.cue last. Empty means the current directory.
		WorkDir string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	fileProvider struct{}

	staticProvider struct {
		cfg *Config
	}
)

// NewProvider creates a file-backed configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// NewStaticProvider returns a Provider that always yields a copy of cfg.
func NewStaticProvider(cfg *Config) Provider {
	return &staticProvider{cfg: cfg}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}

func (p *staticProvider) Load(context.Context, LoadOptions) (*Config, error) {
	cp := *p.cfg
	return &cp, nil
}
