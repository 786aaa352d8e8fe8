package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"flight_gateway/internal/adapters/backend"
	"flight_gateway/internal/adapters/observability"
	"flight_gateway/internal/domain"
)

// Timeout puts a deadline on the request context; every backend call made
// for the request inherits it. A handler that returns unanswered once the
// deadline has passed gets a 503.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			sw := &srw{ResponseWriter: w}
			next.ServeHTTP(sw, r.WithContext(ctx))
			if !sw.wrote && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				writeMessage(w, http.StatusServiceUnavailable, "request timed out")
			}
		})
	}
}

// ---- status-recording ResponseWriter ----

type srw struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *srw) WriteHeader(code int) {
	if !w.wrote {
		w.status = code
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *srw) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *srw) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// ---- Metrics middleware ----

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &srw{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		observability.ObserveHTTP(routePattern(r), r.Method, sw.Status(), time.Since(start))
	})
}

// ---- Structured logging middleware ----

// Logger writes one line per request and puts a request-scoped logger into
// the request context for log.Ctx.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rl := l.With().Str("request_id", chimw.GetReqID(r.Context())).Logger()
			r = r.WithContext(rl.WithContext(r.Context()))

			sw := &srw{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			rl.Info().
				Str("route", routePattern(r)).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Dur("duration", time.Since(start)).
				Str("remote", remoteIP(r)).
				Str("ua", r.UserAgent()).
				Str("user", r.Header.Get(backend.UserHeader)).
				Msg("http_request")
		})
	}
}

// Picks first X-Forwarded-For IP, else X-Real-IP, else RemoteAddr host.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// ---- Username guard ----

// RequireUser rejects requests without the username header. The value is
// trusted as is; identity is resolved upstream.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get(backend.UserHeader)) == "" {
			writeError(w, r, domain.Invalid("%s header is required", backend.UserHeader))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---- Idempotency ----

const IdempotencyHeader = "Idempotency-Key"

// Idempotency serialises requests carrying the same Idempotency-Key. A key is
// kept after a 2xx outcome and released otherwise. A nil store or a store
// error lets the request through.
func Idempotency(store domain.IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			key = r.Header.Get(backend.UserHeader) + ":" + key

			ok, err := store.Begin(r.Context(), key)
			if err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("idempotency store unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				writeMessage(w, http.StatusConflict, "request with this Idempotency-Key is already processed or in progress")
				return
			}

			sw := &srw{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			// the request context may already be done
			ctx := context.WithoutCancel(r.Context())
			if sw.wrote && sw.Status() >= 200 && sw.Status() < 300 {
				err = store.Complete(ctx, key, sw.Status())
			} else {
				err = store.Release(ctx, key)
			}
			if err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("idempotency key update failed")
			}
		})
	}
}
