// Package config loads the pad configuration file and the server environment.
package config

import (
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/juruen/digitpad/log"
)

const (
	configFileName = "config.yaml"
	configDirName  = "digitpad"

	DefaultOrigin    = "http://127.0.0.1:5000"
	DefaultPort      = "5000"
	DefaultBrushSize = 18
	DefaultEpochs    = 10
	DefaultBatchSize = 3
	DefaultWidth     = 560
	DefaultHeight    = 560
)

// Config is the pad configuration, read from YAML.
type Config struct {
	// APIURL overrides the classifier base URL
	APIURL string `yaml:"api_url"`
	// Origin is used when APIURL is empty
	Origin     string  `yaml:"origin"`
	AuthSecret string  `yaml:"auth_secret"`
	BrushSize  float64 `yaml:"brush_size"`
	Epochs     int     `yaml:"epochs"`
	BatchSize  int64   `yaml:"batch_size"`
	Window     Window  `yaml:"window"`
}

type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ServerConfig is the classifier server configuration, read from the environment.
type ServerConfig struct {
	Port        string
	DatabaseURL string
	AuthSecret  string
}

func Default() Config {
	return Config{
		Origin:    DefaultOrigin,
		BrushSize: DefaultBrushSize,
		Epochs:    DefaultEpochs,
		BatchSize: DefaultBatchSize,
		Window:    Window{Width: DefaultWidth, Height: DefaultHeight},
	}
}

// ConfigPath returns DIGITPAD_CONFIG when set, else the file in the user
// config directory, falling back to the home directory.
func ConfigPath() (string, error) {
	if p := os.Getenv("DIGITPAD_CONFIG"); p != "" {
		return p, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return path.Join(home, ".digitpad", configFileName), nil
	}
	return path.Join(configDir, configDirName, configFileName), nil
}

// Load reads the config file at configPath. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(configPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		b, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, errors.Wrapf(err, "can't parse %s", configPath)
			}
			log.Trace.Println("config loaded: ", configPath)
		case os.IsNotExist(err):
			log.Trace.Println("no config file, using defaults: ", configPath)
		default:
			return cfg, errors.Wrapf(err, "can't read %s", configPath)
		}
	}

	applyEnv(&cfg)
	cfg.fillDefaults()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DIGITPAD_API_URL")); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DIGITPAD_ORIGIN")); v != "" {
		cfg.Origin = v
	}
	if v := os.Getenv("DIGITPAD_AUTH_SECRET"); v != "" {
		cfg.AuthSecret = v
	}
	if v := os.Getenv("DIGITPAD_EPOCHS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Epochs = n
		} else {
			log.Warning.Printf("ignoring DIGITPAD_EPOCHS=%q: %v", v, err)
		}
	}
}

func (cfg *Config) fillDefaults() {
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	if cfg.BrushSize <= 0 {
		cfg.BrushSize = DefaultBrushSize
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = DefaultEpochs
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Window.Width <= 0 {
		cfg.Window.Width = DefaultWidth
	}
	if cfg.Window.Height <= 0 {
		cfg.Window.Height = DefaultHeight
	}
}

// Save writes cfg as YAML, creating the directory when needed.
func Save(cfg Config, configPath string) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(path.Dir(configPath), 0700); err != nil {
		return err
	}
	log.Info.Println("Writing config: ", configPath)
	return os.WriteFile(configPath, b, 0600)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// LoadServer reads the server settings from PORT, DATABASE_URL and
// DIGITPAD_AUTH_SECRET.
func LoadServer() ServerConfig {
	return ServerConfig{
		Port:        getEnv("PORT", DefaultPort),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AuthSecret:  os.Getenv("DIGITPAD_AUTH_SECRET"),
	}
}
