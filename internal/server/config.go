package server

import (
	"time"

	"github.com/pkg/errors"
)

// Config holds server configuration
type Config struct {
	// Network settings. An empty QUICAddr disables the QUIC listener.
	Addr     string `yaml:"addr" json:"addr"`
	QUICAddr string `yaml:"quic_addr" json:"quic_addr"`

	MaxSessions    int   `yaml:"max_sessions" json:"max_sessions"`
	MaxMessageSize int64 `yaml:"max_message_size" json:"max_message_size"`

	// StepLimit ends every session episode with a timeout. Zero disables it.
	StepLimit int `yaml:"step_limit" json:"step_limit"`

	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		MaxSessions:    1000,
		MaxMessageSize: 64 * 1024,
		StepLimit:      1000,
		IdleTimeout:    30 * time.Second,
		WriteTimeout:   10 * time.Second,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.Wrap(ErrInvalidConfig, "addr is required")
	case c.MaxSessions <= 0:
		return errors.Wrapf(ErrInvalidConfig, "max sessions %d", c.MaxSessions)
	case c.MaxMessageSize <= 0:
		return errors.Wrapf(ErrInvalidConfig, "max message size %d", c.MaxMessageSize)
	case c.StepLimit < 0:
		return errors.Wrapf(ErrInvalidConfig, "step limit %d", c.StepLimit)
	case c.IdleTimeout <= 0 || c.WriteTimeout <= 0:
		return errors.Wrap(ErrInvalidConfig, "timeouts must be positive")
	}
	return nil
}
