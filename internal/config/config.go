// Package config defines the lookup engine's configuration and its
// validation. Settings come from an optional YAML file (~/.config/dug.yaml
// or --config) overridden by command-line flags; resolver discovery from
// system files is deliberately not done here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dugdns/dug/internal/dns"
	"github.com/dugdns/dug/internal/transport"
)

// Config holds every tunable of the engine and CLI.
type Config struct {
	Resolver ResolverConfig `yaml:"resolver"`
	EDNS     EDNSConfig     `yaml:"edns"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ResolverConfig selects the server and transport.
type ResolverConfig struct {
	Server    string        `yaml:"server"`    // HOST or HOST:PORT
	Transport string        `yaml:"transport"` // udp, tcp, tls, https
	Endpoint  string        `yaml:"endpoint"`  // DoH URL, https transport only
	Timeout   time.Duration `yaml:"timeout"`
	RecvSize  int           `yaml:"recv_size"` // UDP receive buffer floor
}

// EDNSConfig controls the OPT record attached to queries.
type EDNSConfig struct {
	Enabled     bool `yaml:"enabled"`
	PayloadSize int  `yaml:"payload_size"`
	DNSSEC      bool `yaml:"dnssec"` // DO flag
}

// LoggingConfig mirrors internal/logging.Config.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in configuration: Google public DNS over UDP
// with EDNS enabled at the fragmentation-safe payload size.
func Default() Config {
	return Config{
		Resolver: ResolverConfig{
			Server:    "8.8.8.8",
			Transport: string(transport.KindUDP),
			Timeout:   transport.DefaultUDPTimeout,
			RecvSize:  dns.DefaultUDPPayloadSize,
		},
		EDNS: EDNSConfig{
			Enabled:     true,
			PayloadSize: dns.EDNSDefaultUDPPayloadSize,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file at the
// default location is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "dug.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate validates and normalizes the configuration.
func (cfg *Config) Validate() error {
	if cfg.Resolver.Server == "" && cfg.Resolver.Endpoint == "" {
		return errors.New("resolver.server must be set")
	}

	if cfg.Resolver.Transport == "" {
		cfg.Resolver.Transport = string(transport.KindUDP)
	}
	if _, err := transport.ParseKind(cfg.Resolver.Transport); err != nil {
		return fmt.Errorf("resolver.transport: %w", err)
	}

	if cfg.Resolver.Timeout < 0 {
		return errors.New("resolver.timeout must not be negative")
	}
	if cfg.Resolver.RecvSize < 0 {
		return errors.New("resolver.recv_size must not be negative")
	}

	if cfg.EDNS.PayloadSize == 0 {
		cfg.EDNS.PayloadSize = dns.EDNSDefaultUDPPayloadSize
	}
	if cfg.EDNS.PayloadSize < dns.EDNSMinUDPPayloadSize || cfg.EDNS.PayloadSize > 65535 {
		return fmt.Errorf("edns.payload_size must be %d..65535", dns.EDNSMinUDPPayloadSize)
	}
	// DO flag travels in the OPT record, so DNSSEC forces EDNS on.
	if cfg.EDNS.DNSSEC {
		cfg.EDNS.Enabled = true
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "WARN"
	}
	return nil
}
