package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrisonrobin/tasklist/pkg/store"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "tasklist"
	configFile = "config.yaml"
	envPrefix  = "TASKLIST"
)

// Defaults
const (
	DefaultLogFile  = "todo_list.log"
	DefaultLogLevel = "info"
	DefaultCalendar = "Tasks"
)

type Config struct {
	LogFile      string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	HistoryMode  string `mapstructure:"history_mode" yaml:"history_mode"`
	Calendar     string `mapstructure:"calendar" yaml:"calendar"`
	CalendarSync bool   `mapstructure:"calendar_sync" yaml:"calendar_sync"`
}

func Default() *Config {
	return &Config{
		LogFile:     DefaultLogFile,
		LogLevel:    DefaultLogLevel,
		HistoryMode: string(store.ModeLegacy),
		Calendar:    DefaultCalendar,
	}
}

// Dir returns ~/.config/tasklist.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// CredentialsDir returns the directory holding the Google credentials and
// token: the directory of configPath, or Dir when configPath is empty.
func CredentialsDir(configPath string) (string, error) {
	if configPath == "" {
		return Dir()
	}
	return filepath.Dir(configPath), nil
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file yields the defaults. TASKLIST_* environment
// variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	d := Default()
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("history_mode", d.HistoryMode)
	v.SetDefault("calendar", d.Calendar)
	v.SetDefault("calendar_sync", d.CalendarSync)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Calendar == "" {
		cfg.Calendar = DefaultCalendar
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := store.ParseMode(c.HistoryMode); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Mode returns the configured history mode.
func (c *Config) Mode() store.Mode {
	m, err := store.ParseMode(c.HistoryMode)
	if err != nil {
		return store.ModeLegacy
	}
	return m
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Save writes cfg to path, or the default location when path is empty.
func Save(path string, cfg *Config) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return encoder.Close()
}
