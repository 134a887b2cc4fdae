package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Varun5711/expense-tracker/internal/apperr"
	"github.com/Varun5711/expense-tracker/internal/logger"
	"github.com/Varun5711/expense-tracker/internal/middleware"
	"github.com/Varun5711/expense-tracker/internal/respond"
	"github.com/gorilla/mux"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Identity    IdentityService
	Expenses    ExpenseService
	Verifier    middleware.TokenVerifier
	Health      HealthChecker
	RateLimiter *middleware.RateLimiter // nil disables rate limiting
	ClientIP    *middleware.ClientIP    // nil ignores forwarding headers
	Log         *logger.Logger
}

type endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type indexResponse struct {
	Message       string                `json:"message"`
	Version       string                `json:"version"`
	Documentation string                `json:"documentation"`
	Endpoints     map[string][]endpoint `json:"endpoints"`
}

var apiIndex = indexResponse{
	Message:       "Welcome to the Expense Tracker API",
	Version:       "1.0.0",
	Documentation: "/api-docs",
	Endpoints: map[string][]endpoint{
		"auth": {
			{http.MethodPost, "/api/auth/register", "Register a new user"},
			{http.MethodPost, "/api/auth/login", "Login a user"},
		},
		"expenses": {
			{http.MethodGet, "/api/expenses", "Get all expenses"},
			{http.MethodPost, "/api/expenses", "Create a new expense"},
			{http.MethodGet, "/api/expenses/{id}", "Get an expense by ID"},
			{http.MethodPut, "/api/expenses/{id}", "Update an expense by ID"},
			{http.MethodDelete, "/api/expenses/{id}", "Delete an expense by ID"},
		},
	},
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recoverer(cfg.Log))
	r.Use(middleware.RequestLogger(cfg.Log, cfg.ClientIP))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respond.Error(w, req, cfg.Log, apperr.NotFound("Cannot "+req.Method+" "+req.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		respond.Error(w, req, cfg.Log, apperr.MethodNotAllowed("Cannot "+req.Method+" "+req.URL.Path))
	})

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, apiIndex)
	}).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler(cfg.Health)).Methods(http.MethodGet)
	NewSwaggerHandler().RegisterRoutes(r)

	authH := NewAuthHandler(cfg.Identity, cfg.Log)
	authRouter := r.PathPrefix("/api/auth").Subrouter()
	if cfg.RateLimiter != nil {
		authRouter.Use(cfg.RateLimiter.Middleware)
	}
	authRouter.HandleFunc("/register", authH.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authH.Login).Methods(http.MethodPost)

	expenseH := NewExpenseHandler(cfg.Expenses, cfg.Log)
	authMw := middleware.NewAuthMiddleware(cfg.Verifier, cfg.Log)
	expenseRouter := r.PathPrefix("/api/expenses").Subrouter()
	expenseRouter.Use(authMw.RequireAuth)
	expenseRouter.HandleFunc("", expenseH.Create).Methods(http.MethodPost)
	expenseRouter.HandleFunc("", expenseH.List).Methods(http.MethodGet)
	expenseRouter.HandleFunc("/{id}", expenseH.Get).Methods(http.MethodGet)
	expenseRouter.HandleFunc("/{id}", expenseH.Update).Methods(http.MethodPut)
	expenseRouter.HandleFunc("/{id}", expenseH.Delete).Methods(http.MethodDelete)

	return middleware.CORS(r)
}

func healthHandler(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := health.Ping(ctx); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
