package config

import (
	"os"
	"syscall"
	"time"

	"github.com/moby/sys/signal"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTimerFreq    = 12000000
	DefaultTickInterval = "1ms"
	DefaultSleepGuard   = "1us"
	DefaultIRQSignal    = "ALRM"
	DefaultLogLevel     = "info"
)

// Config is the simulator configuration as written in the TOML file
type Config struct {
	TimerFreq    uint32 `toml:"timer_freq"`
	TickInterval string `toml:"tick_interval"`
	SleepGuard   string `toml:"sleep_guard"` // "0s" disables the guard; unset means 1us
	IRQSignal    string `toml:"irq_signal"`  // Must not be a signal reserved by reservedSignals
	LogLevel     string `toml:"log_level"`
	MetricsAddr  string `toml:"metrics_addr"`
}

// Settings is a Config with every value parsed
type Settings struct {
	TimerFreq    uint32
	TickInterval time.Duration
	SleepGuard   time.Duration
	IRQSignal    syscall.Signal
	LogLevel     logrus.Level
	MetricsAddr  string
}

// Load reads the TOML file at path. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return cfg, nil
}

// LoadConfig parses TOML configuration data and applies defaults
func LoadConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	if cfg.TimerFreq == 0 {
		cfg.TimerFreq = DefaultTimerFreq
	}
	if cfg.TickInterval == "" {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.SleepGuard == "" {
		cfg.SleepGuard = DefaultSleepGuard
	}
	if cfg.IRQSignal == "" {
		cfg.IRQSignal = DefaultIRQSignal
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
}

// Resolve parses every value of cfg
func (cfg *Config) Resolve() (*Settings, error) {
	tick, err := time.ParseDuration(cfg.TickInterval)
	if err != nil {
		return nil, errors.Wrap(err, "tick_interval")
	}
	if tick <= 0 {
		return nil, errors.Errorf("tick_interval: must be positive, got %s", tick)
	}

	guard, err := time.ParseDuration(cfg.SleepGuard)
	if err != nil {
		return nil, errors.Wrap(err, "sleep_guard")
	}
	if guard < 0 {
		return nil, errors.Errorf("sleep_guard: must not be negative, got %s", guard)
	}

	sig, err := signal.ParseSignal(cfg.IRQSignal)
	if err != nil {
		return nil, errors.Wrap(err, "irq_signal")
	}
	if why, ok := reservedSignals[sig]; ok {
		return nil, errors.Errorf("irq_signal: %s cannot be used as the timer IRQ (%s)", cfg.IRQSignal, why)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "log_level")
	}

	return &Settings{
		TimerFreq:    cfg.TimerFreq,
		TickInterval: tick,
		SleepGuard:   guard,
		IRQSignal:    sig,
		LogLevel:     level,
		MetricsAddr:  cfg.MetricsAddr,
	}, nil
}
