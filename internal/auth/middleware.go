package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/evcrm/charger-crm/internal/domain"
	applog "github.com/evcrm/charger-crm/internal/logger"
	"go.uber.org/zap"
)

// HeaderUserID selects the acting user of a request
const HeaderUserID = "X-User-ID"

// UserLookup resolves a user id to its current record
type UserLookup interface {
	Lookup(id string) (*domain.User, error)
}

// Middleware attaches the acting user to requests.
// There are no credentials: the caller names the user it acts as.
type Middleware struct {
	users  UserLookup
	logger *zap.Logger
}

// NewMiddleware creates the acting-user middleware
func NewMiddleware(users UserLookup, logger *zap.Logger) *Middleware {
	return &Middleware{
		users:  users,
		logger: logger,
	}
}

// Identify requires an active acting user. A missing or unknown id is 401, a locked account 403.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if userID == "" {
			respond(w, http.StatusUnauthorized, "missing "+HeaderUserID+" header")
			return
		}

		user, err := m.users.Lookup(userID)
		if err != nil {
			m.logger.Warn("unknown acting user",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("user_id", userID),
			)
			respond(w, http.StatusUnauthorized, "unknown user")
			return
		}

		if !user.Status {
			m.logger.Warn("locked user refused",
				zap.String("path", r.URL.Path),
				zap.String("user_id", userID),
			)
			respond(w, http.StatusForbidden, "account is locked")
			return
		}

		applog.WithUser(m.logger, user.ID, user.FullName, string(user.Role)).Debug("request identified",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func respond(w http.ResponseWriter, status int, detail string) {
	errorType := domain.ErrorTypeUnauthorized
	if status == http.StatusForbidden {
		errorType = domain.ErrorTypeForbidden
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   errorType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
