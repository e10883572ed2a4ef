package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Recover turns a panic into the API's JSON 500 body.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := wrap(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("handler panicked", zap.String("path", r.URL.Path), zap.Any("panic", rec), zap.Stack("stack"))
				if rw.wroteHeader {
					return
				}
				rw.Header().Set("Content-Type", "application/json")
				rw.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(rw).Encode(map[string]any{
					"error":   "Internal server error",
					"details": fmt.Sprint(rec),
				})
			}()
			next.ServeHTTP(rw, r)
		})
	}
}
