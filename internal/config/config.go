// Package config loads qtranslate settings from a TOML file, an optional
// .env file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/xerrors"

	"github.com/nconklindev/qtranslate/internal/translator"
)

// Environment variables understood on top of the config file.
const (
	EnvEndpoint = "AZURE_TRANSLATOR_ENDPOINT"
	EnvKey      = "AZURE_TRANSLATOR_KEY"
	EnvRegion   = "AZURE_REGION"
)

const DefaultTimeout = 60 * time.Second

var ErrMissingCredentials = errors.New("translator endpoint and key are required")

// Duration is a time.Duration read from strings such as "45s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type Config struct {
	Translator TranslatorConfig `toml:"translator"`
	Log        LogConfig        `toml:"log"`
}

type TranslatorConfig struct {
	Endpoint string   `toml:"endpoint"`
	Key      string   `toml:"key"`
	Region   string   `toml:"region"`
	Timeout  Duration `toml:"timeout"`
	Proxy    string   `toml:"proxy"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// File receives the log output. In the terminal UI an empty File means
	// a qtranslate.log in the temp directory.
	File string `toml:"file"`
}

func Default() *Config {
	return &Config{
		Translator: TranslatorConfig{
			Endpoint: translator.DefaultAzureEndpoint,
			Timeout:  Duration(DefaultTimeout),
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/qtranslate/config.toml or its platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "qtranslate", "config.toml"), nil
}

// Load reads path over the defaults. A missing file leaves the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, xerrors.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return xerrors.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides translator settings with the Azure environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Translator.Endpoint = v
	}
	if v := os.Getenv(EnvKey); v != "" {
		c.Translator.Key = v
	}
	if v := os.Getenv(EnvRegion); v != "" {
		c.Translator.Region = v
	}
}

// Validate checks that the translation service can be reached.
func (c *Config) Validate() error {
	if c.Translator.Endpoint == "" || c.Translator.Key == "" {
		return xerrors.Errorf("set %s and %s or the [translator] section: %w", EnvEndpoint, EnvKey, ErrMissingCredentials)
	}
	return nil
}

// Azure returns the client settings for the translation service.
func (c *Config) Azure() translator.AzureConfig {
	return translator.AzureConfig{
		Endpoint: c.Translator.Endpoint,
		Key:      c.Translator.Key,
		Region:   c.Translator.Region,
		Timeout:  time.Duration(c.Translator.Timeout),
		Proxy:    c.Translator.Proxy,
	}
}
