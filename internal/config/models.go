package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/muurk/keycalc/internal/logging"
)

// CurrentVersion is the only config schema version this build reads.
const CurrentVersion = 1

// DefaultPort is the remote keypad port, also advertised over mDNS.
const DefaultPort = 7464

// Config represents the entire user configuration file.
type Config struct {
	Version int            `yaml:"version"`
	Display *DisplayConfig `yaml:"display,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
	Server  *ServerConfig  `yaml:"server,omitempty"`
}

// DisplayConfig holds interactive calculator preferences.
type DisplayConfig struct {
	ShowDebug bool `yaml:"show_debug"` // Show the register panel on startup
}

// LoggingConfig controls zap output. KEYCALC_LOG_LEVEL overrides Level.
type LoggingConfig struct {
	Level string `yaml:"level"`          // debug, info, warn, error or empty for silent
	File  string `yaml:"file,omitempty"` // Log file for the TUI; defaults to keycalc.log in the config dir
}

// ServerConfig holds `keycalc serve` defaults.
type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Advertise bool   `yaml:"advertise"` // Register _keycalc._tcp via mDNS
	Instance  string `yaml:"instance"`  // mDNS instance name
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	c := &Config{Version: CurrentVersion}
	c.applyDefaults()
	return c
}

func defaultDisplay() *DisplayConfig {
	return &DisplayConfig{ShowDebug: true}
}

func defaultLogging() *LoggingConfig {
	return &LoggingConfig{}
}

func defaultServer() *ServerConfig {
	return &ServerConfig{
		Port:      DefaultPort,
		Advertise: true,
		Instance:  "keycalc",
	}
}

// applyDefaults fills sections missing from a partially written file.
func (c *Config) applyDefaults() {
	if c.Display == nil {
		c.Display = defaultDisplay()
	}
	if c.Logging == nil {
		c.Logging = defaultLogging()
	}
	if c.Server == nil {
		c.Server = defaultServer()
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Instance == "" {
		c.Server.Instance = "keycalc"
	}
}

// Validate checks value ranges that YAML decoding cannot.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Logging != nil && c.Logging.Level != "" {
		if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	if c.Server != nil && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port: %d is out of range (1-65535)", c.Server.Port)
	}
	return nil
}

// ListenAddr returns host:port for the remote keypad server.
func (s *ServerConfig) ListenAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
