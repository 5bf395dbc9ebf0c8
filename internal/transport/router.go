// Package transport wires the hub onto an HTTP/JSON surface: chi routing,
// a small middleware chain, and the request/response schemas of the
// external interface.
package transport

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jaminalder/gamehub/internal/hub"
)

// requestIDHeader matches chi's own convention so downstream log lines and
// client-visible correlation IDs agree.
const requestIDHeader = "X-Request-Id"

type requestIDCtxKey struct{}

// requestIDFromContext returns the correlation ID stamped by requestID, for
// use in structured log lines.
func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// requestID stamps every request with a uuid-backed correlation ID, in
// place of chi's built-in hostname-plus-counter generator.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDCtxKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request carrying the correlation ID,
// status code, and latency, matching the teacher's plain stdlib-log style
// (the pack has no structured-logging dependency in any go.mod). In verbose
// mode it also logs the query string, useful for tracing long-poll/list
// filter parameters that aren't part of the JSON body.
func requestLogger(verbose bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if verbose {
				log.Printf("request_id=%s method=%s path=%s query=%q status=%d duration=%s",
					requestIDFromContext(r.Context()), r.Method, r.URL.Path, r.URL.RawQuery, ww.Status(), time.Since(start))
				return
			}
			log.Printf("request_id=%s method=%s path=%s status=%d duration=%s",
				requestIDFromContext(r.Context()), r.Method, r.URL.Path, ww.Status(), time.Since(start))
		})
	}
}

// handlerTimeout bounds every route except wait-for-update, which manages
// its own bounded suspension via the hub's configured long-poll window.
const handlerTimeout = 5 * time.Second

// gameIDPathPattern matches the external GameId shape (spec §3). Any
// {game_id} segment that doesn't conform is a malformed path, not a
// not-found game, and must be rejected before it ever reaches the hub.
var gameIDPathPattern = regexp.MustCompile(`^game_[A-Z0-9]+$`)

// validateGameIDPath rejects a {game_id} route parameter that doesn't
// match gameIDPathPattern with the "Path deserialize error" class (§6, §7),
// rather than letting it fall through to a misleading GameNotFoundError.
func validateGameIDPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "game_id")
		if !gameIDPathPattern.MatchString(gameID) {
			writeError(w, newPathError("game_id \""+gameID+"\" does not match game_[A-Z0-9]+"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter wires the route table of §6 onto h. verbose enables the extra
// per-request detail in the log line (query strings, useful when tracing
// long-poll/list filter parameters), gated by the --verbose/GAMEHUB_VERBOSE
// flag.
func NewRouter(h *hub.Hub, verbose bool) http.Handler {
	hs := &handlers{hub: h}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(verbose))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.Timeout(handlerTimeout)).Post("/create-game", limitBody(hs.createGame))
		r.With(middleware.Timeout(handlerTimeout)).Get("/list-games", hs.listGames)

		r.Route("/{game_id}", func(r chi.Router) {
			r.Use(validateGameIDPath)
			r.With(middleware.Timeout(handlerTimeout)).Post("/join-game", limitBody(hs.joinGame))
			r.With(middleware.Timeout(handlerTimeout)).Get("/get-state", hs.getState)
			r.With(middleware.Timeout(handlerTimeout)).Post("/submit-move", limitBody(hs.submitMove))
			// wait-for-update is intentionally outside the shared handler
			// timeout: its own bound is the hub's configured long-poll window.
			r.Get("/wait-for-update", hs.waitForUpdate)
		})
	})

	return r
}
