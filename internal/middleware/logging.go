package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"campus-events/internal/logger"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RequestLogger logs method, path, status and duration of every request.
// The wrapped writer keeps http.Flusher so SSE streams still flush.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			path := r.URL.Path
			if id := chimiddleware.GetReqID(r.Context()); id != "" {
				path = fmt.Sprintf("%s [%s]", path, id)
			}
			log.LogAPI(r.Method, path, fmt.Sprintf("%d", status), time.Since(start).Round(time.Microsecond).String(), ww.BytesWritten())
		})
	}
}

// CORS allows the browser front end to call the API.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowCredentials := true
	for _, o := range allowedOrigins {
		if strings.TrimSpace(o) == "*" {
			allowCredentials = false
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	})
}

// PublicFormLimit throttles unauthenticated form posts per client IP.
func PublicFormLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.LimitByIP(requests, window)
}
