package server

import (
	"net/http"
	"strings"
	"time"

	"marquee/internal/screenly"

	"github.com/sirupsen/logrus"
)

// responseWriter wraps http.ResponseWriter to capture status code & size.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(data)
	rw.size += size
	return size, err
}

// requestLoggingMiddleware logs HTTP requests (if enabled) with latency & size.
func (bs *BridgeServer) requestLoggingMiddleware(next http.Handler) http.Handler {
	if !bs.config.Logging.RequestLogging {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     200, // Default status code
		}

		next.ServeHTTP(rw, r)

		// Health probes are noisy and uninteresting
		if r.URL.Path == "/health" {
			return
		}

		bs.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"status":   rw.statusCode,
			"size":     rw.size,
			"duration": time.Since(start).Round(time.Millisecond),
		}).Info("Request handled")
	})
}

// corsMiddleware injects CORS headers if enabled in configuration.
func (bs *BridgeServer) corsMiddleware(next http.Handler) http.Handler {
	if !bs.config.Server.EnableCORS {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// panicRecoveryMiddleware intercepts panics returning HTTP 500 without
// crashing the process.
func (bs *BridgeServer) panicRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				bs.logger.WithFields(logrus.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"panic":  err,
				}).Error("Panic in handler")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// tokenFromRequest extracts the caller's Screenly credential. Callers pass
// their own key as "Authorization: Token <key>" (or Bearer); when absent the
// configured default applies.
func (bs *BridgeServer) tokenFromRequest(r *http.Request) (screenly.Token, bool) {
	header := r.Header.Get("Authorization")
	for _, prefix := range []string{"Token ", "Bearer "} {
		if strings.HasPrefix(header, prefix) {
			value := strings.TrimSpace(strings.TrimPrefix(header, prefix))
			if value != "" {
				return screenly.Token(value), true
			}
		}
	}

	if token := bs.DefaultToken(); token != "" {
		return token, true
	}
	return "", false
}
