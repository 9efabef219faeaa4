package config

import (
	"fmt"
	"net/url"
	"time"

	"healthrelay/internal/logging"
)

// Defaults applied when the corresponding fields are unset.
const (
	DefaultAddr            = ":3001"
	DefaultUpstreamURL     = "http://127.0.0.1:5000/predict"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultLogLevel        = "info"
	DefaultLogFormat       = logging.FormatJSON
	DefaultShutdownTimeout = 5
)

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Addr:                   DefaultAddr,
		UpstreamURL:            DefaultUpstreamURL,
		MaxBodyBytes:           DefaultMaxBodyBytes,
		LogLevel:               DefaultLogLevel,
		LogFormat:              DefaultLogFormat,
		CORSAllowedOrigins:     []string{"*"},
		ShutdownTimeoutSeconds: DefaultShutdownTimeout,
	}
}

// Merge returns base overlaid with every non-zero field of over.
// A non-nil boolean in over wins whether it is true or false.
func Merge(base, over Config) Config {
	out := base
	if over.Addr != "" {
		out.Addr = over.Addr
	}
	if over.UpstreamURL != "" {
		out.UpstreamURL = over.UpstreamURL
	}
	if over.UpstreamTimeoutSeconds != 0 {
		out.UpstreamTimeoutSeconds = over.UpstreamTimeoutSeconds
	}
	if over.ConnectTimeoutSeconds != 0 {
		out.ConnectTimeoutSeconds = over.ConnectTimeoutSeconds
	}
	if over.MaxBodyBytes != 0 {
		out.MaxBodyBytes = over.MaxBodyBytes
	}
	if over.LogLevel != "" {
		out.LogLevel = over.LogLevel
	}
	if over.LogFormat != "" {
		out.LogFormat = over.LogFormat
	}
	if over.CORSDisabled != nil {
		out.CORSDisabled = Bool(*over.CORSDisabled)
	}
	if len(over.CORSAllowedOrigins) > 0 {
		out.CORSAllowedOrigins = append([]string(nil), over.CORSAllowedOrigins...)
	}
	if over.Swagger != nil {
		out.Swagger = Bool(*over.Swagger)
	}
	if over.ShutdownTimeoutSeconds != 0 {
		out.ShutdownTimeoutSeconds = over.ShutdownTimeoutSeconds
	}
	return out
}

// Validate checks a fully merged configuration.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	u, err := url.Parse(c.UpstreamURL)
	if err != nil {
		return fmt.Errorf("upstream_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream_url must be an absolute http(s) URL, got %q", c.UpstreamURL)
	}
	if c.UpstreamTimeoutSeconds < 0 || c.ConnectTimeoutSeconds < 0 || c.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must be non-negative")
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be non-negative")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("log_format must be %q or %q, got %q", logging.FormatJSON, logging.FormatConsole, c.LogFormat)
	}
	return nil
}

// Bool returns a pointer to v for the optional boolean fields.
func Bool(v bool) *bool { return &v }

// CORSEnabled reports whether CORS headers should be served. Unset means enabled.
func (c Config) CORSEnabled() bool { return c.CORSDisabled == nil || !*c.CORSDisabled }

// SwaggerEnabled reports whether /swagger/* is mounted. Unset means off.
func (c Config) SwaggerEnabled() bool { return c.Swagger != nil && *c.Swagger }

// UpstreamTimeout returns the forward timeout; zero disables it.
func (c Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

// ConnectTimeout returns the dial timeout; zero means the transport default.
func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
