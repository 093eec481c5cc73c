package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/evcrm/charger-crm/internal/auth"
	"github.com/evcrm/charger-crm/internal/config"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RateLimiter throttles requests per acting user, or per client IP when no user is named.
// The user id is taken as sent; it is a throttling key, not an identity proof.
type RateLimiter struct {
	enabled     bool
	logger      *zap.Logger
	ipLimiter   func(http.Handler) http.Handler
	userLimiter func(http.Handler) http.Handler

	exemptIPs      map[string]bool
	exemptNets     []*net.IPNet
	exemptPaths    map[string]bool
	exemptPrefixes []string
}

// NewRateLimiter builds both limiters. Whitelisted IPs may be addresses or
// CIDR ranges; whitelisted paths ending in /* match by prefix.
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		enabled:     cfg.Enabled,
		logger:      logger,
		exemptIPs:   make(map[string]bool),
		exemptPaths: make(map[string]bool),
	}

	for _, entry := range cfg.WhitelistIPs {
		if _, ipNet, err := net.ParseCIDR(entry); err == nil {
			rl.exemptNets = append(rl.exemptNets, ipNet)
			continue
		}
		rl.exemptIPs[entry] = true
	}
	for _, path := range cfg.WhitelistPaths {
		if prefix, ok := strings.CutSuffix(path, "/*"); ok {
			rl.exemptPrefixes = append(rl.exemptPrefixes, prefix)
			continue
		}
		rl.exemptPaths[path] = true
	}

	rl.ipLimiter = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rl.limitExceeded),
	)
	rl.userLimiter = httprate.Limit(
		cfg.RequestsPerMinuteUser,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return "user:" + actingUserID(r), nil
		}),
		httprate.WithLimitHandler(rl.limitExceeded),
	)

	logger.Info("Rate limiter initialized",
		zap.Bool("enabled", cfg.Enabled),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Int("requests_per_minute_user", cfg.RequestsPerMinuteUser),
		zap.Strings("whitelist_paths", cfg.WhitelistPaths),
	)
	return rl
}

// Limit wraps next; it is a no-op when rate limiting is disabled
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}

	ipLimited := rl.ipLimiter(next)
	userLimited := rl.userLimiter(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case rl.exempt(r):
			next.ServeHTTP(w, r)
		case actingUserID(r) != "":
			userLimited.ServeHTTP(w, r)
		default:
			ipLimited.ServeHTTP(w, r)
		}
	})
}

func (rl *RateLimiter) exempt(r *http.Request) bool {
	if rl.exemptPaths[r.URL.Path] {
		return true
	}
	for _, prefix := range rl.exemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}

	addr := clientIP(r)
	if rl.exemptIPs[addr] {
		return true
	}
	if ip := net.ParseIP(addr); ip != nil {
		for _, n := range rl.exemptNets {
			if n.Contains(ip) {
				return true
			}
		}
	}
	return false
}

func (rl *RateLimiter) limitExceeded(w http.ResponseWriter, r *http.Request) {
	rl.logger.Warn("Rate limit exceeded",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("client_ip", clientIP(r)),
		zap.String("user_id", actingUserID(r)),
	)

	w.Header().Set("Retry-After", "60")
	writeProblem(w, http.StatusTooManyRequests, domain.ErrorTypeRateLimited, "Too many requests. Please try again later.")
}

func actingUserID(r *http.Request) string {
	if user, ok := auth.FromContext(r.Context()); ok {
		return user.ID
	}
	return strings.TrimSpace(r.Header.Get(auth.HeaderUserID))
}

// clientIP matches the address httprate.KeyByRealIP keys on
func clientIP(r *http.Request) string {
	key, err := httprate.KeyByRealIP(r)
	if err != nil || key == "" {
		host, _, splitErr := net.SplitHostPort(r.RemoteAddr)
		if splitErr != nil {
			return r.RemoteAddr
		}
		return host
	}
	return key
}
