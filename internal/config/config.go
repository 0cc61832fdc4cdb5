package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort         = ":8080"
	DefaultUpstreamURL  = "https://script.google.com/macros/s/AKfycby5u6xbA1x3PtCKs51axBDBBidLgMHmf4VM_hP5bLWC1Hoy1OnqB1e4QnKtl4xQfUAJ/exec"
	DefaultMaxRedirects = 20
	DefaultReadBuffer   = 64 << 10
	DefaultLogLevel     = "info"
	configName          = "results-proxy"
)

type Config struct {
	Port     string
	Upstream UpstreamConfig
	Server   ServerConfig
	LogLevel string
}

type UpstreamConfig struct {
	URL               string
	MaxRedirects      int
	RequestsPerSecond float64
	ReadBufferSize    int
}

type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewViper returns a viper instance with defaults and the environment
// bindings registered. Flags can be bound onto it before Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("upstream.url", DefaultUpstreamURL)
	v.SetDefault("upstream.max_redirects", DefaultMaxRedirects)
	v.SetDefault("upstream.requests_per_second", 0)
	v.SetDefault("upstream.read_buffer_size", DefaultReadBuffer)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	// Plain names so the platform-provided PORT keeps working.
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("upstream.url", "UPSTREAM_URL")
	_ = v.BindEnv("upstream.max_redirects", "UPSTREAM_MAX_REDIRECTS")
	_ = v.BindEnv("upstream.requests_per_second", "UPSTREAM_RPS")
	_ = v.BindEnv("upstream.read_buffer_size", "UPSTREAM_READ_BUFFER_SIZE")
	_ = v.BindEnv("log.level", "LOG_LEVEL")

	return v
}

// Load reads the optional config file and returns the validated config.
// An explicit configFile must exist; otherwise results-proxy.yaml is looked
// up in the working directory and $HOME and may be absent.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port: v.GetString("port"),
		Upstream: UpstreamConfig{
			URL:               strings.TrimSpace(v.GetString("upstream.url")),
			MaxRedirects:      v.GetInt("upstream.max_redirects"),
			RequestsPerSecond: v.GetFloat64("upstream.requests_per_second"),
			ReadBufferSize:    v.GetInt("upstream.read_buffer_size"),
		},
		Server: ServerConfig{
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
		},
		LogLevel: strings.ToLower(v.GetString("log.level")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.Port[0] != ':' {
		c.Port = ":" + c.Port
	}

	u, err := url.Parse(c.Upstream.URL)
	if err != nil {
		return fmt.Errorf("invalid upstream url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream url must be an absolute http(s) url, got %q", c.Upstream.URL)
	}

	if c.Upstream.MaxRedirects < 0 {
		return fmt.Errorf("upstream max redirects must be >= 0, got %d", c.Upstream.MaxRedirects)
	}
	if c.Upstream.ReadBufferSize < 4096 {
		return fmt.Errorf("upstream read buffer size must be >= 4096, got %d", c.Upstream.ReadBufferSize)
	}
	if c.Upstream.RequestsPerSecond < 0 {
		return fmt.Errorf("upstream requests per second must be >= 0, got %v", c.Upstream.RequestsPerSecond)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.LogLevel)
	}

	return nil
}
