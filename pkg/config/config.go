package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/user/lynisparse/pkg/lynis"
)

// ErrUnknownKey is returned by Set for a key Config does not have.
var ErrUnknownKey = errors.New("unknown config key")

type Config struct {
	Format         string `yaml:"format"`
	Indent         int    `yaml:"indent"`
	OutputDir      string `yaml:"output_dir"`
	HistoryDB      string `yaml:"history_db"`
	ProfilesDir    string `yaml:"profiles_dir"`
	RemediationDir string `yaml:"remediation_dir"`
	Workers        int    `yaml:"workers"`
}

// Keys lists the settable keys in display order.
var Keys = []string{"format", "indent", "output_dir", "history_db", "profiles_dir", "remediation_dir", "workers"}

func Default() *Config {
	return &Config{
		Format:         string(lynis.FormatJSON),
		Indent:         2,
		ProfilesDir:    "profiles",
		RemediationDir: "remediations",
		Workers:        4,
	}
}

// Dir returns ~/.lynisparse, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".lynisparse")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultHistoryPath is used when history_db is not configured.
func DefaultHistoryPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	// Keys missing from the file keep their defaults.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Get returns the string form of key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "format":
		return c.Format, nil
	case "indent":
		return strconv.Itoa(c.Indent), nil
	case "output_dir":
		return c.OutputDir, nil
	case "history_db":
		return c.HistoryDB, nil
	case "profiles_dir":
		return c.ProfilesDir, nil
	case "remediation_dir":
		return c.RemediationDir, nil
	case "workers":
		return strconv.Itoa(c.Workers), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set validates value and stores it under key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "format":
		f, err := lynis.ParseFormat(value)
		if err != nil {
			return err
		}
		c.Format = string(f)
	case "indent", "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q", key, value)
		}
		if key == "indent" {
			c.Indent = n
		} else {
			c.Workers = n
		}
	case "output_dir":
		c.OutputDir = value
	case "history_db":
		c.HistoryDB = value
	case "profiles_dir":
		c.ProfilesDir = value
	case "remediation_dir":
		c.RemediationDir = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}
