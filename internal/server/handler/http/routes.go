package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/apichallenges/internal/challenge"
	"github.com/atinyakov/apichallenges/internal/metrics"
	"github.com/atinyakov/apichallenges/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// challenge API.
//
// Routes:
//
//	POST /challenger                      → challengers.Create
//	GET  /challenges                      → challengers.List
//	GET  /challenger/{token}              → challengers.GetProgress
//	PUT  /challenger/{token}              → challengers.PutProgress
//	GET  /challenger/database/{token}     → challengers.GetDatabase
//	PUT  /challenger/database/{token}     → challengers.PutDatabase
//	*    /heartbeat                       → Heartbeat
//	POST /secret/token                    → secret.Token
//	GET  /secret/note, POST /secret/note  → secret.GetNote, secret.PostNote
//	/todos, /todos/{id}                   → todos (requires X-CHALLENGER)
//	GET  /metrics                         → Prometheus exposition, when m is not nil
//
// Middleware chain (applied in order): request id, request logging,
// metrics, panic recovery, mandatory headers, rate limiting, challenger
// resolution and HEAD-to-GET routing.
func NewRouter(
	todos *TodoHandler,
	challengers *ChallengerHandler,
	secret *SecretHandler,
	logger *zap.Logger,
	m *metrics.Metrics,
	limiter *middleware.RateLimiter,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	if m != nil {
		r.Use(middleware.WithMetrics(m))
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithMandatoryHeaders)
	r.Use(limiter.Middleware)
	r.Use(middleware.WithChallenger(challengers.Sessions))
	r.Use(chiMiddleware.GetHead)

	r.NotFound(notFound)

	r.Post("/challenger", challengers.Create)
	r.Get("/challenges", challengers.List)
	r.Get("/challenger/{token}", challengers.GetProgress)
	r.Put("/challenger/{token}", challengers.PutProgress)
	r.Get("/challenger/database/{token}", challengers.GetDatabase)
	r.Put("/challenger/database/{token}", challengers.PutDatabase)

	r.HandleFunc("/heartbeat", Heartbeat)

	r.Post("/secret/token", secret.Token)
	r.Get("/secret/note", secret.GetNote)
	r.Post("/secret/note", secret.PostNote)

	r.Options("/todos", Options(allowTodos, challenge.OptionsTodos))
	r.Options("/todos/{id}", Options(allowTodo))

	// Protected group: requires a known X-CHALLENGER
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireChallenger)

		r.Get("/todos", todos.List)
		r.Post("/todos", todos.Create)
		r.Get("/todos/{id}", todos.Get)
		r.Put("/todos/{id}", todos.Replace)
		r.Post("/todos/{id}", todos.Update)
		r.Delete("/todos/{id}", todos.Delete)
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && strings.TrimSuffix(r.URL.Path, "/") == "/todo" {
		complete(r, challenge.GetTodosNotPlural404)
	}
	writeJSONErrors(w, http.StatusNotFound, "Could not find an endpoint for "+r.Method+" "+r.URL.Path)
}
