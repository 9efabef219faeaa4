package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"healthrelay/internal/common/fsutil"
)

// EnvPrefix is prepended to every environment variable read by FromEnv.
const EnvPrefix = "HEALTHRELAY_"

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overridden. A missing file is only an error when required.
func LoadDotEnv(path string, required bool) error {
	p, err := fsutil.ResolvePath(path)
	if err != nil {
		return err
	}
	if !required && !fsutil.FileExists(p) {
		return nil
	}
	if err := godotenv.Load(p); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", p, err)
	}
	return nil
}

// FromEnv builds a partial Config from HEALTHRELAY_* variables using lookup (usually os.LookupEnv).
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	str := func(key string) string {
		v, _ := lookup(EnvPrefix + key)
		return strings.TrimSpace(v)
	}
	var errs []error
	num := func(key string) int64 {
		v := str(key)
		if v == "" {
			return 0
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		}
		return n
	}
	flag := func(key string) *bool {
		v := str(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			return nil
		}
		return &b
	}

	cfg.Addr = str("ADDR")
	cfg.UpstreamURL = str("UPSTREAM_URL")
	cfg.UpstreamTimeoutSeconds = int(num("UPSTREAM_TIMEOUT_SECONDS"))
	cfg.ConnectTimeoutSeconds = int(num("CONNECT_TIMEOUT_SECONDS"))
	cfg.MaxBodyBytes = num("MAX_BODY_BYTES")
	cfg.LogLevel = str("LOG_LEVEL")
	cfg.LogFormat = str("LOG_FORMAT")
	cfg.CORSDisabled = flag("CORS_DISABLED")
	cfg.CORSAllowedOrigins = SplitCSV(str("CORS_ALLOWED_ORIGINS"))
	cfg.Swagger = flag("SWAGGER")
	cfg.ShutdownTimeoutSeconds = int(num("SHUTDOWN_TIMEOUT_SECONDS"))
	return cfg, errors.Join(errs...)
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empty items.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
