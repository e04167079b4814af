// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON, YAML or TOML config file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a string ("30s") in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address" yaml:"address" toml:"address"`

	// Config is the path to the Config file.
	Config string `json:"-" yaml:"-" toml:"-"`

	// LogLevel is the minimum zap level ("debug", "info", ...).
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`

	// Metrics enables the /metrics endpoint.
	Metrics bool `json:"metrics" yaml:"metrics" toml:"metrics"`

	// RateLimit is the allowed requests per second per challenger; 0 disables limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit"`
	RateBurst int     `json:"rate_burst" yaml:"rate_burst" toml:"rate_burst"`

	// TLS settings. A cert/key pair wins over TLSSelfSigned.
	TLSCert       string `json:"tls_cert" yaml:"tls_cert" toml:"tls_cert"`
	TLSKey        string `json:"tls_key" yaml:"tls_key" toml:"tls_key"`
	TLSSelfSigned bool   `json:"tls_self_signed" yaml:"tls_self_signed" toml:"tls_self_signed"`

	// ReportInterval is how often registry stats are copied into metrics.
	ReportInterval Duration `json:"report_interval" yaml:"report_interval" toml:"report_interval"`

	ReadTimeout  Duration `json:"read_timeout" yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout" yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout  Duration `json:"idle_timeout" yaml:"idle_timeout" toml:"idle_timeout"`
}

// TLSEnabled reports whether the server should listen with TLS.
func (o *Options) TLSEnabled() bool {
	return (o.TLSCert != "" && o.TLSKey != "") || o.TLSSelfSigned
}

func defaults() *Options {
	return &Options{
		Port:           "localhost:4567",
		Config:         "config.json",
		LogLevel:       "info",
		Metrics:        true,
		RateBurst:      10,
		ReportInterval: Duration{30 * time.Second},
		ReadTimeout:    Duration{10 * time.Second},
		WriteTimeout:   Duration{10 * time.Second},
		IdleTimeout:    Duration{60 * time.Second},
	}
}

func newFlagSet(o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&o.Port, "a", o.Port, "run on ip:port server")
	fs.StringVar(&o.Config, "config", o.Config, "path to config file")
	fs.StringVar(&o.Config, "c", o.Config, "path to config file (shorthand)")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&o.Metrics, "metrics", o.Metrics, "serve Prometheus metrics on /metrics")
	fs.Float64Var(&o.RateLimit, "rate-limit", o.RateLimit, "requests per second per challenger, 0 disables")
	fs.IntVar(&o.RateBurst, "rate-burst", o.RateBurst, "rate limit burst per challenger")
	fs.StringVar(&o.TLSCert, "tls-cert", o.TLSCert, "path to TLS certificate PEM")
	fs.StringVar(&o.TLSKey, "tls-key", o.TLSKey, "path to TLS private key PEM")
	fs.BoolVar(&o.TLSSelfSigned, "tls-self-signed", o.TLSSelfSigned, "serve TLS with a generated self-signed certificate")
	fs.DurationVar(&o.ReportInterval.Duration, "report-interval", o.ReportInterval.Duration, "registry metrics report interval")
	return fs
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It exits the process on invalid configuration.
func Parse() *Options {
	options, err := ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("error while parsing configuration: %v", err)
	}
	return options
}

// ParseArgs builds Options from args, the config file and the environment.
//
// Precedence, lowest first: defaults, config file, explicit flags,
// environment variables.
func ParseArgs(args []string) (*Options, error) {
	options := defaults()
	fs := newFlagSet(options)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			configPath := options.Config
			if err := loadFile(configPath, options); err != nil {
				return nil, err
			}
			// explicit flags win over file values
			if err := fs.Parse(args); err != nil {
				return nil, err
			}
			options.Config = configPath
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}
	if limit := os.Getenv("RATE_LIMIT"); limit != "" {
		v, err := strconv.ParseFloat(limit, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", limit, err)
		}
		options.RateLimit = v
	}

	if err := options.validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func loadFile(path string, o *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, o)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, o)
	case ".toml":
		err = toml.Unmarshal(data, o)
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func (o *Options) validate() error {
	var errs error
	if o.Port == "" {
		errs = multierr.Append(errs, errors.New("server address must not be empty"))
	}
	if o.RateLimit < 0 {
		errs = multierr.Append(errs, errors.New("rate limit must not be negative"))
	}
	if o.RateLimit > 0 && o.RateBurst <= 0 {
		errs = multierr.Append(errs, errors.New("rate burst must be positive when rate limiting is enabled"))
	}
	if (o.TLSCert == "") != (o.TLSKey == "") {
		errs = multierr.Append(errs, errors.New("tls-cert and tls-key must be set together"))
	}
	if o.ReportInterval.Duration <= 0 {
		errs = multierr.Append(errs, errors.New("report interval must be positive"))
	}
	return errs
}
