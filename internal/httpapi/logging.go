package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// maxLoggedPayload is the largest payload logged inline; bigger ones are logged as a size marker.
const maxLoggedPayload = 4 << 10

func parseLevel(s string) zerolog.Level {
	switch s {
	case "off":
		return zerolog.Disabled
	case "error":
		return zerolog.ErrorLevel
	case "info":
		return zerolog.InfoLevel
	case "debug", "1":
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// requestLogLevel returns a per-request level override, if the caller asked for one
// via ?log=<level> or the X-Log-Level header.
func requestLogLevel(r *http.Request) (zerolog.Level, bool) {
	if v := r.URL.Query().Get("log"); v != "" {
		return parseLevel(v), true
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v), true
	}
	return zerolog.NoLevel, false
}

// logPayload returns b compacted onto one line, or a JSON string marker when
// b is too large or not JSON.
func logPayload(b []byte) []byte {
	if len(b) > maxLoggedPayload {
		return []byte(strconv.Quote("<" + strconv.Itoa(len(b)) + " bytes>"))
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return []byte(strconv.Quote("<invalid json>"))
	}
	return buf.Bytes()
}
