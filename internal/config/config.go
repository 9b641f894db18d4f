package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "CHATVIEW"

type Config struct {
	Theme            string        `mapstructure:"theme" json:"theme" yaml:"theme"`
	HooksDir         string        `mapstructure:"hooks_dir" json:"hooks_dir" yaml:"hooks_dir"`
	ExportDir        string        `mapstructure:"export_dir" json:"export_dir" yaml:"export_dir"` // default export destination directory
	CachePath        string        `mapstructure:"cache_path" json:"cache_path" yaml:"cache_path"`
	NoCache          bool          `mapstructure:"no_cache" json:"no_cache" yaml:"no_cache"`
	Timezone         string        `mapstructure:"timezone" json:"timezone" yaml:"timezone"` // empty keeps each timestamp's own offset
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout" json:"fetch_timeout" yaml:"fetch_timeout"`
	MaxDownloadBytes int64         `mapstructure:"max_download_bytes" json:"max_download_bytes" yaml:"max_download_bytes"`
	LogLevel         string        `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	LogFile          string        `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
	Debug            bool          `mapstructure:"debug" json:"debug" yaml:"debug"`
}

func Default() Config {
	dir := ConfigDir()
	return Config{
		Theme:            "Dark",
		HooksDir:         filepath.Join(dir, "hooks"),
		ExportDir:        "", // CWD
		CachePath:        filepath.Join(dir, "cache.db"),
		FetchTimeout:     20 * time.Second,
		MaxDownloadBytes: 25 << 20,
		LogLevel:         "info",
		LogFile:          filepath.Join(dir, "chatview.log"),
	}
}

// DefaultPath is where the config file lives when --config is not given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load reads the config file at path over the defaults, then applies
// CHATVIEW_* environment variables. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	v := viper.New()
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("hooks_dir", cfg.HooksDir)
	v.SetDefault("export_dir", cfg.ExportDir)
	v.SetDefault("cache_path", cfg.CachePath)
	v.SetDefault("no_cache", cfg.NoCache)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("fetch_timeout", cfg.FetchTimeout)
	v.SetDefault("max_download_bytes", cfg.MaxDownloadBytes)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("debug", cfg.Debug)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configType(path))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Save writes c to path as YAML for .yaml/.yml files and JSON otherwise.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		b   []byte
		err error
	)
	if configType(path) == "yaml" {
		b, err = yaml.Marshal(c)
	} else {
		b, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Location resolves Timezone. Empty means nil: keep source offsets.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	if strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// ConfigDir returns the per-user config directory for chatview.
func ConfigDir() string {
	return filepath.Join(UserHome(), ".config", "chatview")
}

func UserHome() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	if runtime.GOOS == "windows" {
		if h := os.Getenv("USERPROFILE"); h != "" {
			return h
		}
	}
	return "."
}

func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}
