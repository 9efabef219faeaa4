package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{
		"HEALTHRELAY_ADDR":                     ":4000",
		"HEALTHRELAY_UPSTREAM_URL":             "http://ml:5000/predict",
		"HEALTHRELAY_UPSTREAM_TIMEOUT_SECONDS": "15",
		"HEALTHRELAY_MAX_BODY_BYTES":           "4096",
		"HEALTHRELAY_CORS_DISABLED":            "true",
		"HEALTHRELAY_CORS_ALLOWED_ORIGINS":     " http://a , ,http://b ",
		"HEALTHRELAY_SWAGGER":                  "1",
	}))
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.Addr != ":4000" || cfg.UpstreamURL != "http://ml:5000/predict" || cfg.UpstreamTimeoutSeconds != 15 || cfg.MaxBodyBytes != 4096 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.CORSEnabled() || !cfg.SwaggerEnabled() {
		t.Fatalf("flags not parsed: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"http://a", "http://b"}) {
		t.Fatalf("origins=%v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnv_ExplicitFalse(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{
		"HEALTHRELAY_CORS_DISABLED": "false",
		"HEALTHRELAY_SWAGGER":       "0",
	}))
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if cfg.CORSDisabled == nil || *cfg.CORSDisabled || cfg.Swagger == nil || *cfg.Swagger {
		t.Fatalf("explicit false not recorded: cors_disabled=%v swagger=%v", cfg.CORSDisabled, cfg.Swagger)
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	_, err := FromEnv(mapLookup(map[string]string{
		"HEALTHRELAY_MAX_BODY_BYTES": "lots",
		"HEALTHRELAY_SWAGGER":        "maybe",
	}))
	if err == nil {
		t.Fatal("expected parse errors")
	}
}

func TestFromEnv_Empty(t *testing.T) {
	cfg, err := FromEnv(mapLookup(nil))
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if !reflect.DeepEqual(cfg, Config{}) {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, ".env")
	if err := os.WriteFile(p, []byte("HEALTHRELAY_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("HEALTHRELAY_TEST_DOTENV") })
	if err := LoadDotEnv(p, true); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("HEALTHRELAY_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	p := filepath.Join(t.TempDir(), "absent.env")
	if err := LoadDotEnv(p, false); err != nil {
		t.Fatalf("optional missing file should be ignored: %v", err)
	}
	if err := LoadDotEnv(p, true); err == nil {
		t.Fatal("required missing file should fail")
	}
}

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		if got := SplitCSV(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
	}
}
