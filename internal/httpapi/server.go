package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"healthrelay/internal/relay"
)

// Predictor defines the methods required by the HTTP API layer.
type Predictor interface {
	// Predict forwards an opaque JSON payload and returns the upstream body.
	Predict(ctx context.Context, payload []byte) ([]byte, error)
	// Ping reports whether the upstream is reachable.
	Ping(ctx context.Context) error
}

type server struct {
	predictor    Predictor
	logger       zerolog.Logger
	maxBodyBytes int64
	baseCtx      context.Context
}

// NewMux builds the router: /api/predict, /healthz, /readyz, /metrics and optionally /swagger.
func NewMux(p Predictor, opts Options) http.Handler {
	s := &server{
		predictor:    p,
		logger:       opts.Logger,
		maxBodyBytes: opts.maxBodyBytes(),
		baseCtx:      opts.baseContext(),
	}

	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if opts.CORSEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.corsOrigins(),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id", "X-Log-Level"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Post("/api/predict", s.handlePredict)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	if opts.Swagger {
		MountSwagger(r)
	}
	return r
}

// handlePredict relays a feature payload to the prediction service.
//
// @Summary      Forward a feature payload to the prediction service
// @Tags         predict
// @Accept       json
// @Produce      json
// @Param        payload  body      types.PredictionRequest  true  "Feature payload"
// @Success      200      {object}  types.PredictionResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /api/predict [post]
func (s *server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		writeJSONError(w, http.StatusUnsupportedMediaType, msgUnsupportedType)
		return
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil || !isJSONObject(payload) {
		// Oversized bodies also land here; still 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	logger := s.requestLogger(r)
	logger.Info().RawJSON("payload", logPayload(payload)).Msg("predict received")

	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := joinContexts(s.baseCtx, r.Context())
	defer cancel()
	ctx = logger.WithContext(ctx)
	ctx = relay.WithRequestID(ctx, middleware.GetReqID(r.Context()))

	start := time.Now()
	body, err := s.predictor.Predict(ctx, payload)
	if err != nil {
		// Client went away; nobody to answer.
		if r.Context().Err() != nil {
			logger.Info().Dur("dur", time.Since(start)).Err(err).Msg("predict canceled")
			return
		}
		if s.baseCtx.Err() != nil {
			w.Header().Set("Connection", "close")
			writeJSONError(w, http.StatusServiceUnavailable, msgShuttingDown)
			logger.Warn().Int("status", http.StatusServiceUnavailable).Dur("dur", time.Since(start)).Err(err).Msg("predict aborted by shutdown")
			return
		}
		status, msg := statusFor(err)
		writeJSONError(w, status, msg)
		logger.Error().Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("predict end")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Warn().Err(err).Msg("write prediction response")
	}
	logger.Info().
		Int("status", http.StatusOK).
		Dur("dur", time.Since(start)).
		RawJSON("response", logPayload(body)).
		Msg("predict end")
}

// handleHealthz is the liveness probe.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "ok"
// @Router       /healthz [get]
func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz reports whether the upstream accepts connections.
//
// @Summary      Upstream reachability probe
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "ready"
// @Failure      503  {string}  string  "upstream unavailable"
// @Router       /readyz [get]
func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.predictor.Ping(r.Context()); err != nil {
		logger := s.requestLogger(r)
		logger.Debug().Err(err).Msg("readiness probe failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// requestLogger derives a logger carrying request_id and path, honouring per-request level overrides.
func (s *server) requestLogger(r *http.Request) zerolog.Logger {
	l := s.logger
	if lvl, ok := requestLogLevel(r); ok {
		l = l.Level(lvl)
	}
	zc := l.With().Str("path", r.URL.Path)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		zc = zc.Str("request_id", rid)
	}
	return zc.Logger()
}

// isJSONContentType accepts application/json with optional parameters, in any case.
func isJSONContentType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "application/json"
}

func isJSONObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{' && json.Valid(b)
}
