package cli

import (
	"os"
	"path/filepath"

	"github.com/jenkinsbuilder/jenkinsbuilder/internal/engine"
	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/process"
)

// Config holds what the CLI needs before flags are parsed
type Config struct {
	// ExeDir is where the registry, token and settings files are looked up
	ExeDir  string
	Version string
}

// NewConfig creates a configuration rooted at the running executable
func NewConfig() *Config {
	exeDir := "."
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	return &Config{ExeDir: exeDir, Version: "dev"}
}

// Option customises a CLI
type Option func(*CLI)

// WithDependencies replaces engine collaborators. Zero fields keep the
// production implementation.
func WithDependencies(deps engine.Dependencies) Option {
	return func(c *CLI) {
		c.overrides = deps
	}
}

// WithLister replaces the process enumeration used by the idle wait
func WithLister(lister process.Lister) Option {
	return func(c *CLI) {
		c.lister = lister
	}
}
