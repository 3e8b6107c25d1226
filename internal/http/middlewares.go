package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sleeplog/internal/authentication"
	"github.com/sleeplog/internal/credentials"
	"github.com/sleeplog/internal/devices"
	"github.com/sleeplog/internal/keys"
	"github.com/sleeplog/internal/tokens"
)

type Middleware func(http.HandlerFunc) http.HandlerFunc

// WithAuthentication resolves the session cookie into a token attached to the
// request context. Requests without a valid session are passed to
// unauthorized instead.
func WithAuthentication(
	logger *slog.Logger,
	key *keys.Key,
	authenticationService *authentication.Service,
	unauthorized http.HandlerFunc,
) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			dvc, ok := devices.FromCookies(key, r.Cookies())
			if !ok {
				unauthorized(w, r)
				return
			}

			ctx, err := authenticationService.AuthenticateContext(r.Context(), dvc.TokenID)
			if errors.Is(err, tokens.ErrNotFound) || errors.Is(err, credentials.ErrNotFound) {
				for _, cookie := range devices.ClearCookies(r.TLS != nil) {
					http.SetCookie(w, cookie)
				}
				unauthorized(w, r)
				return
			} else if err != nil {
				logger.Error("authenticate context", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			next(w, r.WithContext(ctx))
		}
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func WithAccessLogs(logger *slog.Logger) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		}
	}
}
