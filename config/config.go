package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// DefaultRoot is the conventional location of the netboot image tree.
const DefaultRoot = "/var/lib/tftpboot"

type Config struct {
	Root Root `yaml:"root"`
	HTTP HTTP `yaml:"http"`
	TFTP TFTP `yaml:"tftp"`
	Log  Log  `yaml:"log"`
}

type Root struct {
	Dir string `yaml:"dir"` // Directory containing one subdirectory per distro
}

type HTTP struct {
	Addr string `yaml:"addr"` // Address and port to bind the HTTP server
}

type TFTP struct {
	Enabled bool   `yaml:"enabled"` // Serve the same tree read-only over TFTP
	Addr    string `yaml:"addr"`    // Address and port to bind the TFTP server
}

type Log struct {
	Debug bool `yaml:"debug"` // Enable debug-level logging
}

// LoadDefault returns the configuration from built-in defaults overridden
// by environment variables.
func LoadDefault() (*Config, error) {
	cfg := &Config{
		Root: Root{
			Dir: getEnv("OSBOOTD_ROOT", DefaultRoot),
		},
		HTTP: HTTP{
			Addr: getEnv("OSBOOTD_HTTP_ADDR", ":8080"),
		},
		TFTP: TFTP{
			Enabled: getEnvBool("OSBOOTD_TFTP_ENABLED", false),
			Addr:    getEnv("OSBOOTD_TFTP_ADDR", ":69"),
		},
		Log: Log{
			Debug: getEnvBool("OSBOOTD_DEBUG", false),
		},
	}
	return cfg, nil
}

// Load returns the default configuration overlaid with values from a YAML
// file. An empty path is equivalent to LoadDefault.
func Load(path string) (*Config, error) {
	cfg, err := LoadDefault()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer fd.Close()

	if err := yaml.NewDecoder(fd).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configured root directory exists.
func (c *Config) Validate() error {
	fi, err := os.Stat(c.Root.Dir)
	if err != nil {
		return fmt.Errorf("root directory %s: %w", c.Root.Dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("root %s is not a directory", c.Root.Dir)
	}
	return nil
}

// getEnv returns the value of the environment variable key if it exists,
// otherwise it returns the fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	switch value {
	case "1", "true", "TRUE", "yes":
		return true
	case "0", "false", "FALSE", "no":
		return false
	}
	return fallback
}
