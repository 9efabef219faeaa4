package httpapi

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"off":   zerolog.Disabled,
		"error": zerolog.ErrorLevel,
		"info":  zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
		"1":     zerolog.DebugLevel,
		"weird": zerolog.InfoLevel, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	// query param ?log=debug
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got, ok := requestLogLevel(r); !ok || got != zerolog.DebugLevel {
		t.Fatalf("query override failed: %v", got)
	}
	// header X-Log-Level
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got, ok := requestLogLevel(r); !ok || got != zerolog.ErrorLevel {
		t.Fatalf("header override failed: %v", got)
	}
	// no override
	r = httptest.NewRequest("GET", "/x", nil)
	if _, ok := requestLogLevel(r); ok {
		t.Fatal("expected no override")
	}
}

func TestLogPayload(t *testing.T) {
	if got := string(logPayload([]byte("{\n  \"a\": 1\n}"))); got != `{"a":1}` {
		t.Fatalf("expected compacted payload, got %q", got)
	}
	big := []byte(`{"pad":"` + strings.Repeat("x", maxLoggedPayload) + `"}`)
	if got := string(logPayload(big)); !strings.HasPrefix(got, `"<`) || !strings.Contains(got, "bytes>") {
		t.Fatalf("expected size marker, got %q", got)
	}
	if got := string(logPayload([]byte("nope"))); got != `"<invalid json>"` {
		t.Fatalf("got %q", got)
	}
}
