package httpapi

import (
	"context"

	"github.com/rs/zerolog"
)

// defaultMaxBodyBytes is the request body cap when Options.MaxBodyBytes is unset.
const defaultMaxBodyBytes int64 = 1 << 20

// Options configures NewMux. The zero value is usable: 1 MiB body limit,
// CORS off, swagger off, logging disabled.
type Options struct {
	// Logger is the base logger; request-scoped fields are added per call.
	Logger zerolog.Logger
	// MaxBodyBytes caps the /api/predict request body. <=0 means 1 MiB.
	MaxBodyBytes int64
	// CORS configuration (opt-in). If disabled, no CORS middleware is added.
	CORSEnabled        bool
	CORSAllowedOrigins []string
	// Swagger mounts /swagger/* when true.
	Swagger bool
	// BaseContext is canceled on shutdown so in-flight forwards stop too.
	// Defaults to Background if nil.
	BaseContext context.Context
}

func (o Options) maxBodyBytes() int64 {
	if o.MaxBodyBytes <= 0 {
		return defaultMaxBodyBytes
	}
	return o.MaxBodyBytes
}

func (o Options) baseContext() context.Context {
	if o.BaseContext == nil {
		return context.Background()
	}
	return o.BaseContext
}

func (o Options) corsOrigins() []string {
	if len(o.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return append([]string(nil), o.CORSAllowedOrigins...)
}
