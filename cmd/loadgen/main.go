package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelins/restaurant-loadgen/internal/app"
	"github.com/avelins/restaurant-loadgen/internal/client"
	"github.com/avelins/restaurant-loadgen/internal/config"
	"github.com/avelins/restaurant-loadgen/internal/dispatcher"
	"github.com/avelins/restaurant-loadgen/internal/postgres"
	"github.com/avelins/restaurant-loadgen/internal/recorder"
	"github.com/avelins/restaurant-loadgen/internal/scenario"
	"github.com/avelins/restaurant-loadgen/pkg/utils"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, conf, logger); err != nil {
		logger.Error("load run finished with failures", slog.Any("error", err))
		stop()
		os.Exit(1)
	}
}

// run owns the teardown of everything it wires, so main can exit with
// a status code without skipping deferred cleanup.
func run(ctx context.Context, conf config.Config, logger *slog.Logger) error {
	rec := newRecorder(conf, logger)
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Error("failed to close recorder", slog.Any("error", err))
		}
	}()

	if conf.Metrics.Enabled {
		metricsSrv := app.New(logger, conf)
		metricsSrv.Start()
		defer metricsSrv.Stop()
	}

	baseURL := "http://" + net.JoinHostPort(conf.Target.Host, conf.Target.Port)
	c := client.New(baseURL, conf.Target.RequestTimeout, os.Stdout)
	d := dispatcher.New(logger, conf.Load.Workers)

	s := scenario.New(logger, c, d, rec, scenario.Config{
		BatchMin: conf.Load.BatchMin,
		BatchMax: conf.Load.BatchMax,
	})

	logger.Info("starting load run",
		slog.String("target", baseURL),
		slog.Int("workers", conf.Load.Workers),
	)

	return s.Run(ctx)
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func newRecorder(conf config.Config, logger *slog.Logger) recorder.Recorder {
	var recorders []recorder.Recorder

	if conf.RecordsTo("postgres") {
		var db *sqlx.DB
		err := utils.Retry(utils.RetryConfig{MaxAttempts: 5, InitialDelay: 100 * time.Millisecond}, func() error {
			var err error
			db, err = postgres.New(conf.Postgres)
			return err
		})
		panicIfErr("failed to connect to db", err)
		logger.Info("postgres connected")
		recorders = append(recorders, recorder.NewPostgresRecorder(db))
	}

	if conf.RecordsTo("kafka") {
		recorders = append(recorders, recorder.NewKafkaRecorder(conf.Kafka))
		logger.Info("kafka recorder enabled", slog.String("topic", conf.Kafka.Topic))
	}

	return recorder.Multi(recorders...)
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
