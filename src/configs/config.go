package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort used when PORT is not set
	DefaultPort = 5000
	// DefaultMaxFileSize 5MB upload cap
	DefaultMaxFileSize = 5 * 1024 * 1024
	// DefaultMaxFieldSize 1MB cap for plain form fields
	DefaultMaxFieldSize = 1024 * 1024
)

// AuthConfig bearer token settings for /predict
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Secret  string `yaml:"secret"`
}

// CORSConfig cross-origin policy
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// UploadConfig multipart admission limits
type UploadConfig struct {
	FieldName      string   `yaml:"field_name"`
	MaxFileSize    int64    `yaml:"max_file_size"`  // bytes
	MaxFieldSize   int64    `yaml:"max_field_size"` // bytes, non-file fields
	MaxParts       int      `yaml:"max_parts"`
	AllowedTypes   []string `yaml:"allowed_types"`
	RejectMessage  string   `yaml:"reject_message"` // reply for a disallowed type
	InspectPayload bool     `yaml:"inspect_payload"`
	MaxWidth       int      `yaml:"max_width"`
	MaxHeight      int      `yaml:"max_height"`
	MaxPixels      int64    `yaml:"max_pixels"`
}

// Config main configuration
type Config struct {
	Server struct {
		IP   string     `yaml:"ip"`
		Port int        `yaml:"port"`
		Name string     `yaml:"name"`
		Auth AuthConfig `yaml:"auth"`
	} `yaml:"server"`

	Log struct {
		LogLevel string `yaml:"log_level"`
		LogDir   string `yaml:"log_dir"`
		LogFile  string `yaml:"log_file"`
	} `yaml:"log"`

	CORS   CORSConfig   `yaml:"cors"`
	Upload UploadConfig `yaml:"upload"`
}

// Default returns the configuration used when no file or env overrides it.
func Default() *Config {
	config := &Config{}
	config.Server.IP = "0.0.0.0"
	config.Server.Port = DefaultPort
	config.Server.Name = "BirdFinder"

	config.Log.LogLevel = "info"
	config.Log.LogDir = "logs"
	config.Log.LogFile = "server.log"

	config.CORS = CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}

	config.Upload = UploadConfig{
		FieldName:     "image",
		MaxFileSize:   DefaultMaxFileSize,
		MaxFieldSize:  DefaultMaxFieldSize,
		MaxParts:      100,
		AllowedTypes:  []string{"image/jpeg", "image/png", "image/jpg"},
		RejectMessage: "Only JPG and PNG images are allowed.",
		MaxWidth:      8192,
		MaxHeight:     8192,
		MaxPixels:     40_000_000,
	}
	return config
}

// LoadConfig loads .config.yaml, falling back to config.yaml, then applies env overrides
func LoadConfig() (*Config, string, error) {
	path := ".config.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = "config.yaml"
	}

	config, err := LoadFile(path)
	if err != nil {
		return nil, path, err
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, path, err
	}
	if err := config.Validate(); err != nil {
		return nil, path, err
	}
	return config, path, nil
}

// LoadFile reads path over the defaults. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, nil
}

// ApplyEnv overrides file values with PORT, LOG_LEVEL and AUTH_SECRET.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.Log.LogLevel = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		c.Server.Auth.Secret = v
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Upload.FieldName == "" {
		return errors.New("upload.field_name must not be empty")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.max_file_size must be positive: %d", c.Upload.MaxFileSize)
	}
	if c.Upload.MaxFieldSize <= 0 {
		return fmt.Errorf("upload.max_field_size must be positive: %d", c.Upload.MaxFieldSize)
	}
	if c.Upload.MaxParts <= 0 {
		return fmt.Errorf("upload.max_parts must be positive: %d", c.Upload.MaxParts)
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return errors.New("upload.allowed_types must not be empty")
	}
	if c.Server.Auth.Enabled && c.Server.Auth.Secret == "" {
		return errors.New("server.auth.secret is required when auth is enabled")
	}
	return nil
}

// Addr listening address for http.Server
func (c *Config) Addr() string {
	return c.Server.IP + ":" + strconv.Itoa(c.Server.Port)
}
