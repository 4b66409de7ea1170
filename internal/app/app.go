package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/avelins/restaurant-loadgen/internal/config"
	"github.com/avelins/restaurant-loadgen/internal/middleware"
	"github.com/avelins/restaurant-loadgen/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// application serves /metrics and /healthz while a load run is active.
type application struct {
	logger  *slog.Logger
	httpSrv *http.Server
}

func New(logger *slog.Logger, cfg config.Config) *application {
	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(middleware.Logger(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Cors.AllowedOrigins,
	}))

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	httpSrv := &http.Server{
		Handler: router,
		Addr:    net.JoinHostPort(cfg.Metrics.Host, cfg.Metrics.Port),
	}

	return &application{
		logger:  logger,
		httpSrv: httpSrv,
	}
}

func (a *application) Start() {
	go func() {
		a.logger.Info("starting metrics server", slog.String("addr", a.httpSrv.Addr))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("failed to start metrics server", slog.Any("error", err))
		}
	}()
}

const gracefulShutdownTimeout = 5 * time.Second

func (a *application) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Shutdown(ctx); err != nil {
		a.logger.Error("failed to shutdown metrics server", slog.Any("error", err))
	}

	a.logger.Info("metrics server stopped")
}
