package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configFileMode = 0o644
	configDirMode  = 0o755
)

// ErrExists is returned by WriteDefault when the target file is already
// present and overwrite was not requested.
var ErrExists = fmt.Errorf("config file already exists")

// defaultDocument mirrors the documented defaults in config-file order.
type defaultDocument struct {
	ServiceName        string  `json:"service_name"`
	MemoryLimitMB      float64 `json:"memory_limit_mb"`
	MemoryHardLimitMB  float64 `json:"memory_hard_limit_mb"`
	CPULimitPercent    float64 `json:"cpu_limit_percent"`
	CPUSustainSeconds  int     `json:"cpu_sustain_seconds"`
	CheckInterval      int     `json:"check_interval"`
	RestartCooldown    int     `json:"restart_cooldown"`
	MaxRestartsPerHour int     `json:"max_restarts_per_hour"`
	EnableAutoRestart  bool    `json:"enable_auto_restart"`
	EnableMemoryClean  bool    `json:"enable_memory_cleanup"`
	RestartSchedule    string  `json:"restart_schedule"`
	RestartScheduleTZ  string  `json:"restart_schedule_tz"`
	LogLevel           string  `json:"log_level"`
	LogFormat          string  `json:"log_format"`
	LogFile            string  `json:"log_file"`
	HTTPPort           string  `json:"http_port"`
	MetricsPort        string  `json:"metrics_port"`
}

// WriteDefault writes the documented default configuration to path,
// creating parent directories as needed. An existing file is only replaced
// when overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	doc := defaultDocument{
		ServiceName:        DefaultServiceName,
		MemoryLimitMB:      DefaultMemoryLimitMB,
		MemoryHardLimitMB:  DefaultMemoryHardLimitMB,
		CPULimitPercent:    DefaultCPULimitPercent,
		CPUSustainSeconds:  DefaultCPUSustainSeconds,
		CheckInterval:      DefaultCheckInterval,
		RestartCooldown:    DefaultRestartCooldown,
		MaxRestartsPerHour: DefaultMaxRestartsPerHour,
		EnableAutoRestart:  true,
		EnableMemoryClean:  true,
		LogLevel:           DefaultLogLevel,
		LogFormat:          DefaultLogFormat,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), configFileMode); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
