package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("empty document yields documented defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := Load(writeConfigFile(t, `{}`))
		require.NoError(t, err)

		require.Equal(t, DefaultServiceName, cfg.ServiceName)
		require.InEpsilon(t, DefaultMemoryLimitMB, cfg.MemoryLimitMB, 0.001)
		require.InEpsilon(t, DefaultMemoryHardLimitMB, cfg.MemoryHardLimitMB, 0.001)
		require.InEpsilon(t, DefaultCPULimitPercent, cfg.CPULimitPercent, 0.001)
		require.Equal(t, 5*time.Minute, cfg.CPUSustain)
		require.Equal(t, 30*time.Second, cfg.CheckInterval)
		require.Equal(t, 5*time.Minute, cfg.RestartCooldown)
		require.Equal(t, DefaultMaxRestartsPerHour, cfg.MaxRestartsPerHour)
		require.True(t, cfg.EnableAutoRestart)
		require.True(t, cfg.EnableMemoryClean)
		require.Empty(t, cfg.RestartSchedule)
		require.Equal(t, DefaultLogLevel, cfg.LogLevel)
		require.Equal(t, DefaultLogFormat, cfg.LogFormat)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := Load(writeConfigFile(t, `{
			"service_name": "frps-custom",
			"memory_limit_mb": 200,
			"memory_hard_limit_mb": 250,
			"check_interval": 10,
			"enable_auto_restart": false,
			"restart_schedule": "30 4 * * *",
			"restart_schedule_tz": "Asia/Shanghai"
		}`))
		require.NoError(t, err)

		require.Equal(t, "frps-custom", cfg.ServiceName)
		require.InEpsilon(t, 200.0, cfg.MemoryLimitMB, 0.001)
		require.InEpsilon(t, 250.0, cfg.MemoryHardLimitMB, 0.001)
		require.Equal(t, 10*time.Second, cfg.CheckInterval)
		require.False(t, cfg.EnableAutoRestart)
		require.Equal(t, "30 4 * * *", cfg.RestartSchedule)
		require.Equal(t, "Asia/Shanghai", cfg.RestartScheduleTZ)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("FRPS_GUARDIAN_MEMORY_LIMIT_MB", "120")
		t.Setenv("FRPS_GUARDIAN_MEMORY_HARD_LIMIT_MB", "150")

		cfg, err := Load(writeConfigFile(t, `{"memory_limit_mb": 300}`))
		require.NoError(t, err)

		require.InEpsilon(t, 120.0, cfg.MemoryLimitMB, 0.001)
		require.InEpsilon(t, 150.0, cfg.MemoryHardLimitMB, 0.001)
	})

	t.Run("missing file is fatal", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})

	t.Run("malformed json is fatal", func(t *testing.T) {
		t.Parallel()

		_, err := Load(writeConfigFile(t, `{"service_name": `))
		require.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			ServiceName:        "frps",
			MemoryLimitMB:      350,
			MemoryHardLimitMB:  400,
			CPULimitPercent:    80,
			CPUSustain:         5 * time.Minute,
			CheckInterval:      30 * time.Second,
			RestartCooldown:    5 * time.Minute,
			MaxRestartsPerHour: 3,
			LogLevel:           "info",
			LogFormat:          "text",
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty service name", func(c *Config) { c.ServiceName = "" }},
		{"zero memory limit", func(c *Config) { c.MemoryLimitMB = 0 }},
		{"hard limit below soft limit", func(c *Config) { c.MemoryHardLimitMB = 300 }},
		{"zero cpu limit", func(c *Config) { c.CPULimitPercent = 0 }},
		{"cpu limit above 100", func(c *Config) { c.CPULimitPercent = 120 }},
		{"zero cpu sustain", func(c *Config) { c.CPUSustain = 0 }},
		{"check interval below minimum", func(c *Config) { c.CheckInterval = time.Second }},
		{"negative cooldown", func(c *Config) { c.RestartCooldown = -time.Second }},
		{"zero hourly cap", func(c *Config) { c.MaxRestartsPerHour = 0 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"unknown log format", func(c *Config) { c.LogFormat = "yaml" }},
		{"malformed restart schedule", func(c *Config) { c.RestartSchedule = "not a cron" }},
		{"unknown schedule timezone", func(c *Config) {
			c.RestartSchedule = "30 4 * * *"
			c.RestartScheduleTZ = "Mars/Olympus"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Guardian(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		ServiceName:        "frps",
		MemoryLimitMB:      350,
		MemoryHardLimitMB:  400,
		CPULimitPercent:    80,
		CPUSustain:         5 * time.Minute,
		CheckInterval:      30 * time.Second,
		RestartCooldown:    5 * time.Minute,
		MaxRestartsPerHour: 3,
		EnableAutoRestart:  true,
		EnableMemoryClean:  true,
		RestartSchedule:    "30 4 * * *",
		RestartScheduleTZ:  "Asia/Shanghai",
	}

	g := cfg.Guardian()
	require.Equal(t, "frps", g.ServiceName)
	require.InEpsilon(t, 350.0, g.MemorySoftLimitMB, 0.001)
	require.InEpsilon(t, 400.0, g.MemoryHardLimitMB, 0.001)
	require.Equal(t, 5*time.Minute, g.CPUSustain)
	require.Equal(t, 3, g.MaxRestartsPerHour)
	require.True(t, g.AutoRestart)
	require.True(t, g.MemoryCleanup)
	require.Equal(t, "30 4 * * *", g.RestartSchedule)
	require.Equal(t, "Asia/Shanghai", g.RestartScheduleTZ)
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	t.Run("creates a loadable config with parent directories", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "etc", "frps-guardian", "config.json")
		require.NoError(t, WriteDefault(path, false))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, DefaultServiceName, cfg.ServiceName)
		require.True(t, cfg.EnableAutoRestart)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `{"service_name": "keep-me"}`)

		err := WriteDefault(path, false)
		require.ErrorIs(t, err, ErrExists)

		cfg, loadErr := Load(path)
		require.NoError(t, loadErr)
		require.Equal(t, "keep-me", cfg.ServiceName)
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `{"service_name": "replace-me"}`)
		require.NoError(t, WriteDefault(path, true))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, DefaultServiceName, cfg.ServiceName)
	})
}
