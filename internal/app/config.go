package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/pipedef/internal/emit"
	"github.com/vk/pipedef/internal/refid"
)

// Command selects what the App does with the loaded configuration.
type Command string

const (
	CommandEmit     Command = "emit"
	CommandValidate Command = "validate"
	CommandMatch    Command = "match"
	CommandHistory  Command = "history"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command Command
	Paths   []string // hcl files or directories

	Format      emit.Format
	OutPath     string // empty means stdout
	HistoryDB   string // empty disables the ledger for emit
	ExternalIDs []string

	Properties   map[string]string // agent properties for match
	HistoryLimit int

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandEmit, CommandValidate, CommandMatch:
		if len(cfg.Paths) == 0 {
			return nil, errors.New("at least one configuration path is required")
		}
	case CommandHistory:
		if cfg.HistoryDB == "" {
			return nil, errors.New("history requires a ledger database path")
		}
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.Format == "" {
		cfg.Format = emit.DefaultFormat
	}
	format, err := emit.ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, err
	}
	cfg.Format = format

	for _, id := range cfg.ExternalIDs {
		if err := refid.ValidateID(id); err != nil {
			return nil, fmt.Errorf("invalid external id: %w", err)
		}
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	return &cfg, nil
}
