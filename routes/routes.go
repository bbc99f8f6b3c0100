package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"edufoyer/controllers/solvers"
	"edufoyer/controllers/tasks"
	"edufoyer/middleware"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "edufoyer-core",
	})
}

func InitRouter() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for container health checks (root level)
	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// CORS origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	origins := []string{"https://edufoyer.com", "http://localhost:3000", "http://127.0.0.1:3000"}
	if env := os.Getenv("CORS_ALLOWED_ORIGINS"); env != "" {
		for _, p := range strings.Split(env, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)
	api.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// Creation gets an extra per-IP guard in front of the per-asker quota.
	createLimiter := middleware.NewIPRateLimiter(60, time.Hour)

	auth := middleware.AuthMiddleware
	asker := func(h http.HandlerFunc) http.Handler { return auth(middleware.RequireRole("asker", h)) }
	solver := func(h http.HandlerFunc) http.Handler { return auth(middleware.RequireRole("solver", h)) }

	// Task lifecycle
	api.Handle("/tasks", createLimiter.Middleware(asker(tasks.CreateTaskHandler))).Methods(http.MethodPost)
	api.Handle("/tasks", asker(tasks.ListTasksHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/quota", asker(tasks.QuotaHandler)).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}", auth(http.HandlerFunc(tasks.GetTaskHandler))).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}/accept", solver(tasks.AcceptTaskHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/complete", asker(tasks.CompleteByAskerHandler)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/finish", solver(tasks.CompleteByWorkerHandler)).Methods(http.MethodPost)

	// Solver surface
	api.Handle("/solvers", solver(solvers.OnboardHandler)).Methods(http.MethodPost)
	api.Handle("/solvers/wallet", solver(solvers.WalletHandler)).Methods(http.MethodGet)

	// In-app inbox (either role)
	api.Handle("/notifications", auth(http.HandlerFunc(solvers.NotificationsHandler))).Methods(http.MethodGet)
	api.Handle("/notifications/{id:[0-9]+}/read", auth(http.HandlerFunc(solvers.MarkNotificationReadHandler))).Methods(http.MethodPost)

	return r
}
