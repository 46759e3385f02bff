package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	DB      DBConfig      `yaml:"db" toml:"db"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Upload  UploadConfig  `yaml:"upload" toml:"upload"`
	Auth    AuthConfig    `yaml:"auth" toml:"auth"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Host                string   `yaml:"host" toml:"host"`
	Port                int      `yaml:"port" toml:"port"`
	AllowedOrigins      []string `yaml:"allowed_origins" toml:"allowed_origins"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds" toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds" toml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds" toml:"idle_timeout_seconds"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DBConfig struct {
	Driver string `yaml:"driver" toml:"driver"`
	Path   string `yaml:"path" toml:"path"`
	URL    string `yaml:"url" toml:"url"`
}

type StorageConfig struct {
	Dir       string `yaml:"dir" toml:"dir"`
	URLPrefix string `yaml:"url_prefix" toml:"url_prefix"`
}

type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes" toml:"max_bytes"`
}

type AuthConfig struct {
	Mode         string `yaml:"mode" toml:"mode"`
	Header       string `yaml:"header" toml:"header"`
	DefaultOwner string `yaml:"default_owner" toml:"default_owner"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	Path   string `yaml:"path" toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                8080,
			AllowedOrigins:      []string{"http://localhost:3000"},
			ReadTimeoutSeconds:  60,
			WriteTimeoutSeconds: 120,
			IdleTimeoutSeconds:  120,
		},
		DB: DBConfig{
			Driver: "sqlite",
			Path:   "tracksheet.db",
		},
		Storage: StorageConfig{
			Dir:       "uploads",
			URLPrefix: "/uploads",
		},
		Upload: UploadConfig{
			MaxBytes: 100 << 20,
		},
		Auth: AuthConfig{
			Mode:         "apikey",
			Header:       "X-User-ID",
			DefaultOwner: "local",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads configuration from defaults, an optional YAML or TOML file and
// TRACKSHEET_* environment variables, then validates it. path overrides
// TRACKSHEET_CONFIG_PATH when set.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TRACKSHEET_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("TRACKSHEET_SERVER_HOST", &cfg.Server.Host)
	if err := setInt("TRACKSHEET_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if origins := os.Getenv("TRACKSHEET_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	setString("TRACKSHEET_DB_DRIVER", &cfg.DB.Driver)
	setString("TRACKSHEET_DB_PATH", &cfg.DB.Path)
	setString("TRACKSHEET_DB_URL", &cfg.DB.URL)
	setString("TRACKSHEET_STORAGE_DIR", &cfg.Storage.Dir)
	setString("TRACKSHEET_STORAGE_URL_PREFIX", &cfg.Storage.URLPrefix)
	if v := os.Getenv("TRACKSHEET_UPLOAD_MAX_BYTES"); v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("invalid TRACKSHEET_UPLOAD_MAX_BYTES: %w", err)
		}
		cfg.Upload.MaxBytes = int64(n)
	}
	setString("TRACKSHEET_AUTH_MODE", &cfg.Auth.Mode)
	setString("TRACKSHEET_AUTH_HEADER", &cfg.Auth.Header)
	setString("TRACKSHEET_AUTH_DEFAULT_OWNER", &cfg.Auth.DefaultOwner)
	setString("TRACKSHEET_LOG_LEVEL", &cfg.Log.Level)
	setString("TRACKSHEET_LOG_FORMAT", &cfg.Log.Format)
	setString("TRACKSHEET_LOG_PATH", &cfg.Log.Path)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
