package main

import (
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	InputPath  string
	OutputPath string
	Replace    bool
	Seed       int64
	Verbose    bool
	Archive    ArchiveConfig
}

// ArchiveConfig controls the optional MongoDB record of each run's codes.
type ArchiveConfig struct {
	MongoURI   string        `env:"RANDOMIZER_MONGO_URI"`
	Database   string        `env:"RANDOMIZER_MONGO_DATABASE"   envDefault:"implant_config"`
	Collection string        `env:"RANDOMIZER_MONGO_COLLECTION" envDefault:"code_assignments"`
	Timeout    time.Duration `env:"RANDOMIZER_MONGO_TIMEOUT"    envDefault:"10s"`
}

// LoadArchiveConfig reads the archive settings from the environment.
func LoadArchiveConfig() (ArchiveConfig, error) {
	var cfg ArchiveConfig
	if err := env.Parse(&cfg); err != nil {
		return ArchiveConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Enabled reports whether runs should be archived.
func (c ArchiveConfig) Enabled() bool { return c.MongoURI != "" }

// ResolveOutput returns the destination file, or "" for standard output.
// Replace wins over OutputPath.
func (c Config) ResolveOutput() string {
	if c.Replace {
		return c.InputPath
	}
	return c.OutputPath
}

// Output returns the strategy for the resolved destination.
func (c Config) Output(stdout io.Writer) OutputStrategy {
	if path := c.ResolveOutput(); path != "" {
		return FileOutput{Path: path}
	}
	return StdoutOutput{W: stdout}
}

// NewRandomizer picks a fixed-seed generator when Seed is set.
func (c Config) NewRandomizer() *Randomizer {
	if c.Seed != 0 {
		return NewSeededRandomizer(c.Seed)
	}
	return NewRandomizer()
}
