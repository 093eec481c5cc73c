package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evcrm/charger-crm/internal/auth"
	"github.com/evcrm/charger-crm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userMap map[string]domain.User

func (m userMap) Lookup(id string) (*domain.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &u, nil
}

func TestIdentify(t *testing.T) {
	users := userMap{
		"u1": {ID: "u1", FullName: "Admin", Role: domain.RoleAdmin, Status: true},
		"u9": {ID: "u9", FullName: "Locked", Role: domain.RoleSales, Status: false},
	}
	mw := auth.NewMiddleware(users, zap.NewNop())

	var seen *domain.User
	handler := mw.Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.MustFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		userID   string
		expected int
	}{
		{"active user", "u1", http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"unknown user", "nobody", http.StatusUnauthorized},
		{"locked user", "u9", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
			if tt.userID != "" {
				req.Header.Set(auth.HeaderUserID, tt.userID)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expected, rr.Code)
			if tt.expected == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, tt.userID, seen.ID)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := auth.FromContext(req.Context())
	assert.False(t, ok)
	assert.Panics(t, func() { auth.MustFromContext(req.Context()) })
}
