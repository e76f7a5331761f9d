// Package config holds the simulator configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/c6461sim/emu"
)

// SimConfig holds the settings a Simulator is built from.
type SimConfig struct {
	// TickIntervalMS is the delay between run-mode ticks in a front-end.
	// Default: 1 ms.
	TickIntervalMS uint64 `json:"tick_interval_ms"`

	// MaxInstructions stops a run after this many instructions.
	// 0 means no limit.
	MaxInstructions uint64 `json:"max_instructions"`

	// DefaultInputCount is the number of values IN expects when R3 is not
	// positive. Default: 20.
	DefaultInputCount int `json:"default_input_count"`

	// StartPC, when set, is loaded into the PC after a program is loaded.
	StartPC *uint16 `json:"start_pc,omitempty"`

	// CacheEnabled routes operand accesses through the cache. Default: true.
	CacheEnabled bool `json:"cache_enabled"`

	// CacheLines is the number of fully associative lines. Default: 16.
	CacheLines int `json:"cache_lines"`

	// CacheBlockSize is the number of words per line. Default: 8.
	CacheBlockSize int `json:"cache_block_size"`

	// PredictorEntries is the number of 2-bit counters. Default: 128.
	PredictorEntries uint32 `json:"predictor_entries"`

	// LogLevel is a logrus level name. Default: "info".
	LogLevel string `json:"log_level"`
}

// Default returns the standard machine configuration.
func Default() *SimConfig {
	return &SimConfig{
		TickIntervalMS:    1,
		DefaultInputCount: emu.DefaultInputCount,
		CacheEnabled:      true,
		CacheLines:        16,
		CacheBlockSize:    8,
		PredictorEntries:  128,
		LogLevel:          "info",
	}
}

// Load reads a SimConfig from a JSON file. Fields missing from the file
// keep their default values.
func Load(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Save writes the SimConfig to a JSON file.
func (c *SimConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// Validate checks that the configuration describes a buildable machine.
func (c *SimConfig) Validate() error {
	if c.TickIntervalMS == 0 {
		return fmt.Errorf("tick_interval_ms must be > 0")
	}
	if c.DefaultInputCount <= 0 {
		return fmt.Errorf("default_input_count must be > 0")
	}
	if c.StartPC != nil && *c.StartPC >= emu.MemorySize {
		return fmt.Errorf("start_pc must be < %d", emu.MemorySize)
	}
	if c.CacheEnabled {
		if c.CacheLines <= 0 {
			return fmt.Errorf("cache_lines must be > 0")
		}
		if c.CacheBlockSize <= 0 || !isPowerOfTwo(uint64(c.CacheBlockSize)) {
			return fmt.Errorf("cache_block_size must be a power of 2")
		}
	}
	if !isPowerOfTwo(uint64(c.PredictorEntries)) {
		return fmt.Errorf("predictor_entries must be a power of 2")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the configured log level, or Info if it does not parse.
func (c *SimConfig) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// TickInterval returns TickIntervalMS as a duration.
func (c *SimConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// Clone returns a deep copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	clone := *c
	if c.StartPC != nil {
		pc := *c.StartPC
		clone.StartPC = &pc
	}
	return &clone
}
