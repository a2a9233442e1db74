// Package config loads slotmap CLI configuration from JSONC files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/slotmap/pkg/slotmap"
)

// Snapshot formats accepted by snapshot_format.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatBolt = "bolt"
)

// FileName is the project config file looked up in the working directory.
const FileName = ".slotmap.json"

// HistoryFileName is the default REPL history file, relative to $HOME.
const HistoryFileName = ".slotmap_history"

// Error variables for config loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrCapacityRange      = errors.New("capacity out of range")
	ErrSnapshotFormat     = errors.New("snapshot_format must be \"json\", \"yaml\" or \"bolt\"")
	ErrLogLevel           = errors.New("invalid log_level")
)

// Config holds all configuration options.
type Config struct {
	Capacity       int    `json:"capacity"`
	HistoryFile    string `json:"history_file"`
	SnapshotFormat string `json:"snapshot_format"`
	Prompt         string `json:"prompt"`
	LogFile        string `json:"log_file"`
	LogLevel       string `json:"log_level"`

	// Resolved values (computed, not serialized)
	EffectiveCwd string  `json:"-"`
	Sources      Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Capacity:       1024,
		SnapshotFormat: FormatJSON,
		Prompt:         "slotmap> ",
		LogLevel:       zerolog.LevelInfoValue,
	}
}

// fileConfig is the on-disk shape. Pointer fields distinguish "unset" from
// an explicit zero value so an explicit "capacity": 0 is rejected instead of
// silently falling back to the default.
type fileConfig struct {
	Capacity       *int    `json:"capacity"`
	HistoryFile    *string `json:"history_file"`
	SnapshotFormat *string `json:"snapshot_format"`
	Prompt         *string `json:"prompt"`
	LogFile        *string `json:"log_file"`
	LogLevel       *string `json:"log_level"`
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Env             map[string]string // environment variables
}

// Load loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/slotmap/config.json or ~/.config/slotmap/config.json)
// 3. Project config file at default location (.slotmap.json, if exists)
// 4. Explicit config file via ConfigPath (replaces 3)
//
// Command flags such as repl --capacity are applied by the commands on top.
// Relative history_file and log_file paths are resolved against the working
// directory.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	if home := input.Env["HOME"]; home != "" {
		cfg.HistoryFile = filepath.Join(home, HistoryFileName)
	}

	globalPath := globalConfigPath(input.Env)
	if globalPath != "" {
		fileCfg, loaded, err := loadFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, fileCfg)
			cfg.Sources.Global = globalPath
		}
	}

	projectPath, mustExist := filepath.Join(workDir, FileName), false
	if input.ConfigPath != "" {
		projectPath, mustExist = input.ConfigPath, true
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}
	}

	fileCfg, loaded, err := loadFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = merge(cfg, fileCfg)
		cfg.Sources.Project = projectPath
	}

	err = Validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if cfg.HistoryFile != "" && !filepath.IsAbs(cfg.HistoryFile) {
		cfg.HistoryFile = filepath.Join(workDir, cfg.HistoryFile)
	}

	if cfg.LogFile != "" && !filepath.IsAbs(cfg.LogFile) {
		cfg.LogFile = filepath.Join(workDir, cfg.LogFile)
	}

	return cfg, nil
}

// Validate checks values that cannot be represented by a working REPL.
func Validate(cfg Config) error {
	if cfg.Capacity < 1 || cfg.Capacity > slotmap.MaxCapacity {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrCapacityRange, cfg.Capacity, slotmap.MaxCapacity)
	}

	switch cfg.SnapshotFormat {
	case FormatJSON, FormatYAML, FormatBolt:
	default:
		return fmt.Errorf("%w, got %q", ErrSnapshotFormat, cfg.SnapshotFormat)
	}

	_, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	return nil
}

// Format renders the effective configuration as key=value lines.
func Format(cfg Config) string {
	history := cfg.HistoryFile
	if history == "" {
		history = "(disabled)"
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "(disabled)"
	}

	return "capacity=" + strconv.Itoa(cfg.Capacity) + "\n" +
		"history_file=" + history + "\n" +
		"snapshot_format=" + cfg.SnapshotFormat + "\n" +
		"prompt=" + strconv.Quote(cfg.Prompt) + "\n" +
		"log_file=" + logFile + "\n" +
		"log_level=" + cfg.LogLevel + "\n" +
		"effective_cwd=" + cfg.EffectiveCwd
}

// ParseLogLevel parses a log_level value. The empty string means info.
func ParseLogLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrLogLevel, level)
	}

	return parsed, nil
}

// globalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/slotmap/config.json if set, otherwise ~/.config/slotmap/config.json.
// Returns empty string if home directory cannot be determined.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "slotmap", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "slotmap", "config.json")
	}

	return ""
}

// loadFile loads a config file. If mustExist is false, missing files return
// loaded=false and no error.
func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !mustExist && errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, false, nil
		}

		if mustExist && errors.Is(err, os.ErrNotExist) {
			return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}

		return fileConfig{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg fileConfig

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func merge(base Config, overlay fileConfig) Config {
	if overlay.Capacity != nil {
		base.Capacity = *overlay.Capacity
	}

	if overlay.HistoryFile != nil {
		base.HistoryFile = *overlay.HistoryFile
	}

	if overlay.SnapshotFormat != nil {
		base.SnapshotFormat = *overlay.SnapshotFormat
	}

	if overlay.Prompt != nil {
		base.Prompt = *overlay.Prompt
	}

	if overlay.LogFile != nil {
		base.LogFile = *overlay.LogFile
	}

	if overlay.LogLevel != nil {
		base.LogLevel = *overlay.LogLevel
	}

	return base
}
