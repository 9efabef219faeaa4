package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nupstream_url: http://ml:5000/predict\nupstream_timeout_seconds: 12\nmax_body_bytes: 2048\ncors_allowed_origins: [\"http://a\", \"http://b\"]\nswagger: true\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.UpstreamURL != "http://ml:5000/predict" || cfg.UpstreamTimeoutSeconds != 12 || cfg.MaxBodyBytes != 2048 || !cfg.SwaggerEnabled() {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"http://a", "http://b"}) {
		t.Fatalf("origins=%v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","upstream_url":"http://x/predict","log_level":"debug","log_format":"console","cors_disabled":true}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.UpstreamURL != "http://x/predict" || cfg.LogLevel != "debug" || cfg.LogFormat != "console" || cfg.CORSEnabled() {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nupstream_url=\"https://ml.example/predict\"\nconnect_timeout_seconds=3\nshutdown_timeout_seconds=9\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.UpstreamURL != "https://ml.example/predict" || cfg.ConnectTimeoutSeconds != 3 || cfg.ShutdownTimeoutSeconds != 9 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	writeTempFile(t, home, "relay.yaml", "addr: :1234\n")
	cfg, err := Load("~/relay.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":1234" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
