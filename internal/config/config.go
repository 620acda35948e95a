package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/frpguard/frps-guardian/internal/infra/cronparser"
	"github.com/frpguard/frps-guardian/internal/logic/guardian"
)

// DefaultPath is where the guardian looks for its config file unless
// --config says otherwise.
const DefaultPath = "/etc/frps-guardian/config.json"

const envPrefix = "FRPS_GUARDIAN"

// Documented defaults, sized for a 2-core 0.5GB host.
const (
	DefaultServiceName        = "frps"
	DefaultMemoryLimitMB      = 350.0
	DefaultMemoryHardLimitMB  = 400.0
	DefaultCPULimitPercent    = 80.0
	DefaultCPUSustainSeconds  = 300
	DefaultCheckInterval      = 30
	DefaultRestartCooldown    = 300
	DefaultMaxRestartsPerHour = 3
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

// Config is the guardian's full configuration, loaded once at startup.
type Config struct {
	ServiceName        string
	MemoryLimitMB      float64
	MemoryHardLimitMB  float64
	CPULimitPercent    float64
	CPUSustain         time.Duration
	CheckInterval      time.Duration
	RestartCooldown    time.Duration
	MaxRestartsPerHour int
	EnableAutoRestart  bool
	EnableMemoryClean  bool
	RestartSchedule    string
	RestartScheduleTZ  string

	LogLevel    string
	LogFormat   string
	LogFile     string
	HTTPPort    string
	MetricsPort string
}

// Load reads the config file at path with environment overrides applied.
// A missing or malformed file is fatal; `create-config` writes a valid one.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{
		ServiceName:        v.GetString(keyServiceName),
		MemoryLimitMB:      v.GetFloat64(keyMemoryLimitMB),
		MemoryHardLimitMB:  v.GetFloat64(keyMemoryHardLimitMB),
		CPULimitPercent:    v.GetFloat64(keyCPULimitPercent),
		CPUSustain:         time.Duration(v.GetInt(keyCPUSustainSeconds)) * time.Second,
		CheckInterval:      time.Duration(v.GetInt(keyCheckInterval)) * time.Second,
		RestartCooldown:    time.Duration(v.GetInt(keyRestartCooldown)) * time.Second,
		MaxRestartsPerHour: v.GetInt(keyMaxRestartsPerHour),
		EnableAutoRestart:  v.GetBool(keyEnableAutoRestart),
		EnableMemoryClean:  v.GetBool(keyEnableMemoryCleanup),
		RestartSchedule:    v.GetString(keyRestartSchedule),
		RestartScheduleTZ:  v.GetString(keyRestartScheduleTZ),
		LogLevel:           v.GetString(keyLogLevel),
		LogFormat:          v.GetString(keyLogFormat),
		LogFile:            v.GetString(keyLogFile),
		HTTPPort:           v.GetString(keyHTTPPort),
		MetricsPort:        v.GetString(keyMetricsPort),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyServiceName, DefaultServiceName)
	v.SetDefault(keyMemoryLimitMB, DefaultMemoryLimitMB)
	v.SetDefault(keyMemoryHardLimitMB, DefaultMemoryHardLimitMB)
	v.SetDefault(keyCPULimitPercent, DefaultCPULimitPercent)
	v.SetDefault(keyCPUSustainSeconds, DefaultCPUSustainSeconds)
	v.SetDefault(keyCheckInterval, DefaultCheckInterval)
	v.SetDefault(keyRestartCooldown, DefaultRestartCooldown)
	v.SetDefault(keyMaxRestartsPerHour, DefaultMaxRestartsPerHour)
	v.SetDefault(keyEnableAutoRestart, true)
	v.SetDefault(keyEnableMemoryCleanup, true)
	v.SetDefault(keyRestartSchedule, "")
	v.SetDefault(keyRestartScheduleTZ, "")
	v.SetDefault(keyLogLevel, DefaultLogLevel)
	v.SetDefault(keyLogFormat, DefaultLogFormat)
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyHTTPPort, "")
	v.SetDefault(keyMetricsPort, "")
}

// Validate rejects configurations the guardian cannot run safely with.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("%s must not be empty", keyServiceName)
	}

	if c.MemoryLimitMB <= 0 {
		return fmt.Errorf("%s must be positive, got %v", keyMemoryLimitMB, c.MemoryLimitMB)
	}

	if c.MemoryHardLimitMB < c.MemoryLimitMB {
		return fmt.Errorf("%s (%v) must be at least %s (%v)",
			keyMemoryHardLimitMB, c.MemoryHardLimitMB, keyMemoryLimitMB, c.MemoryLimitMB)
	}

	if c.CPULimitPercent <= 0 || c.CPULimitPercent > 100 {
		return fmt.Errorf("%s must be in (0, 100], got %v", keyCPULimitPercent, c.CPULimitPercent)
	}

	if c.CPUSustain <= 0 {
		return fmt.Errorf("%s must be positive", keyCPUSustainSeconds)
	}

	if c.CheckInterval < minCheckInterval {
		return fmt.Errorf("%s must be at least %s, got %s",
			keyCheckInterval, minCheckInterval, c.CheckInterval)
	}

	if c.RestartCooldown < 0 {
		return fmt.Errorf("%s must not be negative", keyRestartCooldown)
	}

	if c.MaxRestartsPerHour < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", keyMaxRestartsPerHour, c.MaxRestartsPerHour)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%s must be one of debug, info, warn, error, got %q", keyLogLevel, c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s must be text or json, got %q", keyLogFormat, c.LogFormat)
	}

	if c.RestartSchedule != "" {
		_, err := cronparser.New().NextAfter(c.RestartSchedule, c.RestartScheduleTZ, time.Now())
		if err != nil {
			return fmt.Errorf("%s: %w", keyRestartSchedule, err)
		}
	}

	return nil
}

// Guardian maps the configuration onto the domain's operating parameters.
func (c *Config) Guardian() guardian.Config {
	return guardian.Config{
		ServiceName:        c.ServiceName,
		MemorySoftLimitMB:  c.MemoryLimitMB,
		MemoryHardLimitMB:  c.MemoryHardLimitMB,
		CPULimitPercent:    c.CPULimitPercent,
		CPUSustain:         c.CPUSustain,
		CheckInterval:      c.CheckInterval,
		RestartCooldown:    c.RestartCooldown,
		MaxRestartsPerHour: c.MaxRestartsPerHour,
		AutoRestart:        c.EnableAutoRestart,
		MemoryCleanup:      c.EnableMemoryClean,
		RestartSchedule:    c.RestartSchedule,
		RestartScheduleTZ:  c.RestartScheduleTZ,
	}
}
