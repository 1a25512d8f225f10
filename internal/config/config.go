package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/eigerco/yeti/internal/store"
	"github.com/eigerco/yeti/internal/sweep"
	"github.com/eigerco/yeti/pkg/log"
)

// Config is the runtime configuration of the yeti command
type Config struct {
	Sweep  sweep.Config
	Output string

	StorePath  string
	FlushEvery int

	LogLevel  zerolog.Level
	LogFormat log.LoggerType
}

// config.toml key mapping
type fileConfig struct {
	Sweep struct {
		Start     uint32 `toml:"start"`
		End       uint32 `toml:"end"`
		Workers   int    `toml:"workers"`
		ChunkSize int    `toml:"chunk_size"`
		LineEvery uint32 `toml:"line_every"`
		Output    string `toml:"output"`
	} `toml:"sweep"`
	Store struct {
		Path       string `toml:"path"`
		FlushEvery int    `toml:"flush_every"`
	} `toml:"store"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

func Default() Config {
	return Config{
		Sweep:      sweep.DefaultConfig(),
		Output:     "sweep.txt",
		FlushEvery: store.DefaultFlushEvery,
		LogLevel:   zerolog.InfoLevel,
		LogFormat:  log.ConsoleLogger,
	}
}

// Load reads a TOML file and overlays the keys it defines on Default()
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("sweep", "start") {
		cfg.Sweep.Start = raw.Sweep.Start
	}
	if meta.IsDefined("sweep", "end") {
		cfg.Sweep.End = raw.Sweep.End
	}
	if meta.IsDefined("sweep", "workers") {
		cfg.Sweep.Workers = raw.Sweep.Workers
	}
	if meta.IsDefined("sweep", "chunk_size") {
		cfg.Sweep.ChunkSize = raw.Sweep.ChunkSize
	}
	if meta.IsDefined("sweep", "line_every") {
		cfg.Sweep.LineEvery = raw.Sweep.LineEvery
	}
	if meta.IsDefined("sweep", "output") {
		cfg.Output = strings.TrimSpace(raw.Sweep.Output)
	}
	if meta.IsDefined("store", "path") {
		cfg.StorePath = strings.TrimSpace(raw.Store.Path)
	}
	if meta.IsDefined("store", "flush_every") {
		cfg.FlushEvery = raw.Store.FlushEvery
	}
	if meta.IsDefined("log", "level") {
		lvl, err := log.ParseLogLevel(strings.TrimSpace(raw.Log.Level))
		if err != nil {
			return Config{}, fmt.Errorf("load config: log.level: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if meta.IsDefined("log", "format") {
		typ, err := log.ParseLoggerType(strings.TrimSpace(raw.Log.Format))
		if err != nil {
			return Config{}, fmt.Errorf("load config: log.format: %w", err)
		}
		cfg.LogFormat = typ
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Sweep.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Output == "" {
		return fmt.Errorf("config: sweep.output is required")
	}
	if c.FlushEvery <= 0 {
		return fmt.Errorf("config: store.flush_every must be positive, got %d", c.FlushEvery)
	}
	return nil
}
