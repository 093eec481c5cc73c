package middleware

import (
	"net/http"
	"slices"

	"github.com/evcrm/charger-crm/internal/auth"
	"github.com/evcrm/charger-crm/internal/config"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// CORS returns the cross-origin policy for browser clients.
// The acting-user header is always allowed and the request id is always exposed.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   withHeader(cfg.AllowedHeaders, auth.HeaderUserID),
		ExposedHeaders:   withHeader(cfg.ExposedHeaders, RequestIDHeader),
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	switch allow := originPolicy(cfg.AllowedOrigins, environment); {
	case allow != nil:
		options.AllowOriginFunc = allow
		logger.Info("CORS origin policy",
			zap.String("environment", environment),
			zap.Bool("wildcard", slices.Contains(cfg.AllowedOrigins, "*")),
		)
	default:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins", zap.Strings("origins", cfg.AllowedOrigins))
	}

	if slices.Contains(cfg.AllowedOrigins, "*") && !isDevelopment(environment) {
		logger.Warn("CORS configured with wildcard origin outside development",
			zap.String("environment", environment))
	}

	return cors.Handler(options)
}

// originPolicy returns nil when the explicit origin list applies.
// An empty list allows every origin in development and none elsewhere;
// go-chi/cors treats an empty AllowedOrigins as "*", so denial needs a func.
func originPolicy(origins []string, environment string) func(*http.Request, string) bool {
	anyOrigin := func(_ *http.Request, origin string) bool { return origin != "" }

	switch {
	case slices.Contains(origins, "*"):
		return anyOrigin
	case len(origins) > 0:
		return nil
	case isDevelopment(environment):
		return anyOrigin
	default:
		return func(*http.Request, string) bool { return false }
	}
}

func isDevelopment(environment string) bool {
	return environment == "" || environment == "development" || environment == "local"
}

func withHeader(headers []string, name string) []string {
	for _, h := range headers {
		if http.CanonicalHeaderKey(h) == http.CanonicalHeaderKey(name) {
			return headers
		}
	}
	return append(slices.Clone(headers), name)
}
