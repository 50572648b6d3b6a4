package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JanAndriessens/CalyClub-sub002/internal/api/handlers"
	"github.com/JanAndriessens/CalyClub-sub002/internal/api/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
)

const (
	actionLogin    = "login"
	actionRegister = "register"
)

type AppOpts struct {
	Log            *slog.Logger
	Port           int
	AllowedOrigins []string
}

type App struct {
	AppOpts
	server *http.Server
}

func New(
	opts AppOpts,
	handler *handlers.Handler,
	guard middleware.AdminGuard,
	gate middleware.RiskGate,
	requests *prometheus.CounterVec,
) *App {
	router := mux.NewRouter()
	router.Use(middleware.RequestMetrics(requests))

	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	authRouter := router.PathPrefix("/api/auth").Subrouter()
	authRouter.Handle("/login",
		middleware.RequireRiskToken(opts.Log, gate, actionLogin)(http.HandlerFunc(handler.Login)),
	).Methods(http.MethodPost)
	authRouter.Handle("/register",
		middleware.RequireRiskToken(opts.Log, gate, actionRegister)(http.HandlerFunc(handler.Register)),
	).Methods(http.MethodPost)

	adminRouter := router.PathPrefix("/api/admin").Subrouter()
	adminRouter.Use(middleware.AdminOnly(opts.Log, guard))
	adminRouter.HandleFunc("/users/{email}", handler.DeleteUser).Methods(http.MethodDelete)
	adminRouter.HandleFunc("/lockouts/{email}", handler.LockoutStatus).Methods(http.MethodGet)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RiskTokenHeader},
	}).Handler(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: corsHandler,
	}

	return &App{AppOpts: opts, server: server}
}

// MustRun runs the HTTP server and panics if any error occurs
func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "httpapp.Run"
	log := a.Log.With(slog.String("op", op), slog.Int("port", a.Port))

	log.Info("HTTP server is running", slog.String("addr", a.server.Addr))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Stop(ctx context.Context) error {
	const op = "httpapp.Stop"

	a.Log.With(slog.String("op", op), slog.Int("port", a.Port)).
		Info("stopping HTTP server")

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
