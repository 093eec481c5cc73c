package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/evcrm/charger-crm/internal/domain"
)

// writeProblem writes the problem body shared with the handlers
func writeProblem(w http.ResponseWriter, status int, problemType, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   problemType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}
