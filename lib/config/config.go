// Copyright 2026 The JSONLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for JSONLens
// components.
//
// Configuration is loaded from a single file specified by:
//   - JSONLENS_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
//
// The config file may contain environment-specific sections
// (development, staging, production) that override base values when
// the environment matches.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for JSONLens.
type Config struct {
	// Environment identifies the deployment type (development,
	// staging, production).
	Environment Environment `yaml:"environment"`

	// Limits bounds input size and analysis time.
	Limits LimitsConfig `yaml:"limits"`

	// Analysis configures the structural analyzer's thresholds.
	Analysis AnalysisConfig `yaml:"analysis"`

	// Chunking configures when and how documents are split.
	Chunking ChunkingConfig `yaml:"chunking"`

	// Cache configures the analysis result cache.
	Cache CacheConfig `yaml:"cache"`

	// Storage configures the document store.
	Storage StorageConfig `yaml:"storage"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per
// environment.
type ConfigOverrides struct {
	Limits  *LimitsConfig  `yaml:"limits,omitempty"`
	Cache   *CacheConfig   `yaml:"cache,omitempty"`
	Storage *StorageConfig `yaml:"storage,omitempty"`
}

// LimitsConfig bounds what the engine will accept.
type LimitsConfig struct {
	// MaxInputMiB rejects documents larger than this many MiB of
	// canonical bytes. Zero means no limit.
	// Default: 1024
	MaxInputMiB int64 `yaml:"max_input_mib"`

	// AnalysisTimeout is how long one analysis may run, as a Go
	// duration string. Empty means no deadline.
	// Default: 60s
	AnalysisTimeout string `yaml:"analysis_timeout"`
}

// AnalysisConfig configures the analyzer's reporting thresholds.
type AnalysisConfig struct {
	// LargeArrayThreshold is the element count above which an array
	// is flagged. Default: 1000
	LargeArrayThreshold int `yaml:"large_array_threshold"`

	// DeepObjectThreshold is the depth beyond which a container is
	// flagged. Default: 10
	DeepObjectThreshold int `yaml:"deep_object_threshold"`

	// PathSampleCap bounds the recorded path sample. Default: 1000
	PathSampleCap int `yaml:"path_sample_cap"`
}

// ChunkingConfig configures document splitting.
type ChunkingConfig struct {
	// ThresholdMiB is the canonical size above which a document is
	// split into chunks. Default: 1
	ThresholdMiB int64 `yaml:"threshold_mib"`

	// TargetChunkKiB is the soft size ceiling per chunk.
	// Default: 1024
	TargetChunkKiB int64 `yaml:"target_chunk_kib"`
}

// CacheConfig configures the analysis result cache.
type CacheConfig struct {
	// TTL is the entry lifetime as a Go duration string.
	// Default: 30s
	TTL string `yaml:"ttl"`

	// Capacity is the maximum cached entry count. Default: 1000
	Capacity int `yaml:"capacity"`

	// JanitorInterval is how often expired entries are swept, as a
	// Go duration string. Default: 1m
	JanitorInterval string `yaml:"janitor_interval"`
}

// StorageConfig configures the document store.
type StorageConfig struct {
	// Path is the SQLite database file.
	// Default: ${HOME}/.cache/jsonlens/documents.db
	Path string `yaml:"path"`

	// PoolSize is the SQLite connection pool size. Default: 4
	PoolSize int `yaml:"pool_size"`

	// Compression selects the blob compression codec: "zstd", "lz4",
	// or "none". Default: zstd
	Compression string `yaml:"compression"`
}

// Default returns the default configuration. These defaults are used
// as a base before loading the config file; commands that run without
// a config file use them directly.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Environment: Development,
		Limits: LimitsConfig{
			MaxInputMiB:     1024,
			AnalysisTimeout: "60s",
		},
		Analysis: AnalysisConfig{
			LargeArrayThreshold: 1000,
			DeepObjectThreshold: 10,
			PathSampleCap:       1000,
		},
		Chunking: ChunkingConfig{
			ThresholdMiB:   1,
			TargetChunkKiB: 1024,
		},
		Cache: CacheConfig{
			TTL:             "30s",
			Capacity:        1000,
			JanitorInterval: "1m",
		},
		Storage: StorageConfig{
			Path:        filepath.Join(homeDir, ".cache", "jsonlens", "documents.db"),
			PoolSize:    4,
			Compression: "zstd",
		},
	}
}

// Load loads configuration from the JSONLENS_CONFIG environment
// variable.
//
// This is the only way to load configuration without an explicit
// path. There are no fallbacks - if JSONLENS_CONFIG is not set, this
// fails. This ensures deterministic, auditable configuration with no
// hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("JSONLENS_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("JSONLENS_CONFIG environment variable not set; " +
			"set it to the path of your jsonlens.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment
// variables do not override config values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()

	return cfg, nil
}

// applyEnvironmentOverrides applies the environment-specific
// overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Limits != nil {
		if overrides.Limits.MaxInputMiB != 0 {
			c.Limits.MaxInputMiB = overrides.Limits.MaxInputMiB
		}
		if overrides.Limits.AnalysisTimeout != "" {
			c.Limits.AnalysisTimeout = overrides.Limits.AnalysisTimeout
		}
	}

	if overrides.Cache != nil {
		if overrides.Cache.TTL != "" {
			c.Cache.TTL = overrides.Cache.TTL
		}
		if overrides.Cache.Capacity != 0 {
			c.Cache.Capacity = overrides.Cache.Capacity
		}
		if overrides.Cache.JanitorInterval != "" {
			c.Cache.JanitorInterval = overrides.Cache.JanitorInterval
		}
	}

	if overrides.Storage != nil {
		if overrides.Storage.Path != "" {
			c.Storage.Path = overrides.Storage.Path
		}
		if overrides.Storage.PoolSize != 0 {
			c.Storage.PoolSize = overrides.Storage.PoolSize
		}
		if overrides.Storage.Compression != "" {
			c.Storage.Compression = overrides.Storage.Compression
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Limits.MaxInputMiB < 0 {
		errs = append(errs, fmt.Errorf("limits.max_input_mib must not be negative"))
	}
	if _, err := c.AnalysisTimeout(); err != nil {
		errs = append(errs, fmt.Errorf("limits.analysis_timeout: %w", err))
	}

	if c.Chunking.ThresholdMiB < 0 {
		errs = append(errs, fmt.Errorf("chunking.threshold_mib must not be negative"))
	}
	if c.Chunking.TargetChunkKiB <= 0 {
		errs = append(errs, fmt.Errorf("chunking.target_chunk_kib must be positive"))
	}

	if _, err := c.CacheTTL(); err != nil {
		errs = append(errs, fmt.Errorf("cache.ttl: %w", err))
	}
	if _, err := c.JanitorInterval(); err != nil {
		errs = append(errs, fmt.Errorf("cache.janitor_interval: %w", err))
	}
	if c.Cache.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("cache.capacity must be positive"))
	}

	if c.Storage.Path == "" {
		errs = append(errs, fmt.Errorf("storage.path is required"))
	}
	if c.Storage.PoolSize <= 0 {
		errs = append(errs, fmt.Errorf("storage.pool_size must be positive"))
	}
	switch c.Storage.Compression {
	case "zstd", "lz4", "none":
	default:
		errs = append(errs, fmt.Errorf("storage.compression must be one of: zstd, lz4, none"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// AnalysisTimeout parses the analysis deadline. Zero means no
// deadline.
func (c *Config) AnalysisTimeout() (time.Duration, error) {
	return parseDuration(c.Limits.AnalysisTimeout)
}

// CacheTTL parses the cache entry lifetime.
func (c *Config) CacheTTL() (time.Duration, error) {
	return parseDuration(c.Cache.TTL)
}

// JanitorInterval parses the cache sweep interval.
func (c *Config) JanitorInterval() (time.Duration, error) {
	return parseDuration(c.Cache.JanitorInterval)
}

// MaxInputSize returns the input ceiling in bytes. Zero means no
// limit.
func (c *Config) MaxInputSize() int64 {
	return c.Limits.MaxInputMiB << 20
}

// ChunkThreshold returns the canonical size in bytes above which a
// document is split.
func (c *Config) ChunkThreshold() int64 {
	return c.Chunking.ThresholdMiB << 20
}

// TargetChunkSize returns the per-chunk soft size ceiling in bytes.
func (c *Config) TargetChunkSize() int64 {
	return c.Chunking.TargetChunkKiB << 10
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", s)
	}
	return d, nil
}
