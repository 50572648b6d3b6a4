package metricsapp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JanAndriessens/CalyClub-sub002/internal/lib/logger/sl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	log  *slog.Logger
	port int
	reg  *prometheus.Registry

	FailedLoginsCounter    *prometheus.CounterVec
	AccountLockoutsCounter prometheus.Counter
	HTTPRequestsCounter    *prometheus.CounterVec
}

func New(log *slog.Logger, port int) *App {
	reg := prometheus.NewRegistry()

	failedLogins := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "failed_login_attempts_total",
		Help: "Total number of failed login attempts.",
	}, []string{"email"})

	accountLockouts := promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "account_lockouts_total",
		Help: "Total number of accounts locked after repeated failures.",
	})

	httpRequests := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of handled HTTP requests.",
	}, []string{"method", "path", "code"})

	return &App{
		log:                    log,
		port:                   port,
		reg:                    reg,
		FailedLoginsCounter:    failedLogins,
		AccountLockoutsCounter: accountLockouts,
		HTTPRequestsCounter:    httpRequests,
	}
}

func (a *App) MustRun() {
	err := a.Run()
	if errors.Is(err, http.ErrServerClosed) {
		a.log.Info("Prometheus server closed", sl.Err(err))
	} else if err != nil {
		a.log.Error("Failed to start Prometheus", sl.Err(err))
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "metricsapp.Run"
	log := a.log.With(slog.String("op", op), slog.Int("port", a.port))

	log.Info("exposing Prometheus metrics")

	http.Handle("/metrics", promhttp.HandlerFor(
		a.reg,
		promhttp.HandlerOpts{
			// Opt into OpenMetrics e.g. to support exemplars.
			EnableOpenMetrics: true,
		},
	))

	return http.ListenAndServe(fmt.Sprintf(":%d", a.port), nil)
}
