package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/evcrm/charger-crm/internal/domain"
	"go.uber.org/zap"
)

// Recovery turns a panicking handler into a 500 response
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)

				writeProblem(w, http.StatusInternalServerError, domain.ErrorTypeInternal, "An unexpected error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
