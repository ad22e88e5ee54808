package config

import (
	"time"
)

// Config is the process-wide configuration for the task runtime. It is
// read-mostly after setup: build it with Default(), overlay it through Load,
// and pass it (or individual settings) into definitions rather than mutating
// it afterward.
type Config struct {
	Log   LogConfig   `koanf:"log"   validate:"required"`
	Task  TaskConfig  `koanf:"task"  validate:"required"`
	Retry RetryConfig `koanf:"retry" validate:"required"`
}

// LogConfig controls the structured log records emitted per finalized result.
type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error" env:"LOG_LEVEL"`
	JSON  bool   `koanf:"json"                                         env:"LOG_JSON"`
}

// TaskConfig carries the global defaults applied when a task definition does
// not override them.
type TaskConfig struct {
	// HaltOn is the default set of statuses that make the raising entry
	// point return a fault. Tasks and workflow groups can override it.
	HaltOn []string `koanf:"halt_on" validate:"dive,oneof=skipped failed" env:"TASK_HALT_ON"`
	// Timeout bounds business-logic execution when a task does not set its
	// own deadline. Zero disables the bound.
	Timeout time.Duration `koanf:"timeout" env:"TASK_TIMEOUT"`
}

// RetryConfig is the default exception-retry policy for business logic.
type RetryConfig struct {
	Attempts    int           `koanf:"attempts"     validate:"min=0,max=100" env:"RETRY_ATTEMPTS"`
	BackoffBase time.Duration `koanf:"backoff_base"                          env:"RETRY_BACKOFF_BASE"`
	BackoffMax  time.Duration `koanf:"backoff_max"                           env:"RETRY_BACKOFF_MAX"`
	Jitter      time.Duration `koanf:"jitter"                                env:"RETRY_JITTER"`
}

// Default returns the canonical configuration: raise on failed only, no
// timeout, no retries until opted in.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Task: TaskConfig{
			HaltOn: []string{"failed"},
		},
		Retry: RetryConfig{
			Attempts:    0,
			BackoffBase: 100 * time.Millisecond,
			BackoffMax:  5 * time.Second,
			Jitter:      50 * time.Millisecond,
		},
	}
}
