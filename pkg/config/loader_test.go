package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Run("Should return the canonical defaults", func(t *testing.T) {
		cfg := Default()
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.JSON)
		assert.Equal(t, []string{"failed"}, cfg.Task.HaltOn)
		assert.Equal(t, time.Duration(0), cfg.Task.Timeout)
		assert.Equal(t, 0, cfg.Retry.Attempts)
		assert.Equal(t, 100*time.Millisecond, cfg.Retry.BackoffBase)
		assert.Equal(t, 5*time.Second, cfg.Retry.BackoffMax)
		assert.Equal(t, 50*time.Millisecond, cfg.Retry.Jitter)
	})

	t.Run("Should validate cleanly", func(t *testing.T) {
		require.NoError(t, Validate(Default()))
	})
}

func TestLoad(t *testing.T) {
	t.Run("Should return the defaults without environment overrides", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("Should overlay environment variables", func(t *testing.T) {
		t.Setenv("TASKRUN_LOG_LEVEL", "debug")
		t.Setenv("TASKRUN_LOG_JSON", "true")
		t.Setenv("TASKRUN_TASK_TIMEOUT", "30s")
		t.Setenv("TASKRUN_RETRY_ATTEMPTS", "3")
		t.Setenv("TASKRUN_RETRY_BACKOFF_BASE", "250ms")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Log.JSON)
		assert.Equal(t, 30*time.Second, cfg.Task.Timeout)
		assert.Equal(t, 3, cfg.Retry.Attempts)
		assert.Equal(t, 250*time.Millisecond, cfg.Retry.BackoffBase)
	})

	t.Run("Should split the halt list on commas", func(t *testing.T) {
		t.Setenv("TASKRUN_TASK_HALT_ON", "failed, skipped")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"failed", "skipped"}, cfg.Task.HaltOn)
	})

	t.Run("Should reject invalid values", func(t *testing.T) {
		t.Setenv("TASKRUN_LOG_LEVEL", "loud")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})
}

func TestValidate(t *testing.T) {
	t.Run("Should reject a halt status outside the allowed set", func(t *testing.T) {
		cfg := Default()
		cfg.Task.HaltOn = []string{"success"}
		require.Error(t, Validate(cfg))
	})

	t.Run("Should reject an attempt count over the cap", func(t *testing.T) {
		cfg := Default()
		cfg.Retry.Attempts = 1000
		require.Error(t, Validate(cfg))
	})
}

func TestTransformEnvKey(t *testing.T) {
	t.Run("Should map variable names onto config paths", func(t *testing.T) {
		assert.Equal(t, "log.level", transformEnvKey("LOG_LEVEL"))
		assert.Equal(t, "task.halt_on", transformEnvKey("TASK_HALT_ON"))
		assert.Equal(t, "retry.backoff_base", transformEnvKey("RETRY_BACKOFF_BASE"))
		assert.Equal(t, "", transformEnvKey(""))
	})
}
