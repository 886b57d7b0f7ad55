package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // Asia/Taipei must resolve on minimal images

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/train-ticket-qr/internal/carriage"
	"github.com/iliyamo/train-ticket-qr/internal/config"
	"github.com/iliyamo/train-ticket-qr/internal/handler"
	"github.com/iliyamo/train-ticket-qr/internal/middleware"
	"github.com/iliyamo/train-ticket-qr/internal/queue"
	"github.com/iliyamo/train-ticket-qr/internal/router"
	"github.com/iliyamo/train-ticket-qr/internal/service"
)

func main() {
	config.LoadDotEnv() // .env is optional
	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))

	table := carriage.SecondRevisionTable()
	if cfg.CarriageTablePath != "" {
		t, err := config.LoadSeatTable(cfg.CarriageTablePath)
		if err != nil {
			slog.Error("failed to load seat table", "path", cfg.CarriageTablePath, "err", err)
			os.Exit(1)
		}
		table = t
	}
	slog.Info("seat table ready", "table", table.Name, "carriages", len(table.Carriages()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(ctx) // nil when Redis is disabled or down
	if rdb != nil {
		defer rdb.Close()
	}

	var pub service.TicketPublisher = service.NopPublisher{}
	if cfg.QueueEnabled {
		pub = service.NewAMQPPublisher(cfg.AMQPURL)
		go func() {
			if err := queue.StartTicketConsumer(ctx, cfg.AMQPURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("ticket consumer stopped", "err", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(requestLogger())

	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Deps{
		Carriages:   handler.NewCarriageHandler(table),
		Tickets:     handler.NewTicketHandler(cfg, table, pub),
		Cache:       middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		Limit:       middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		ShareSecret: cfg.ShareSecret,
	})

	addr := ":" + cfg.Port
	go func() {
		slog.Info("listening", "addr", addr, "env", cfg.Env, "queue", cfg.QueueEnabled, "redis", rdb != nil)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
	slog.Info("stopped")
}

// newLogger writes JSON in prod and text elsewhere, at LOG_LEVEL.
func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Env == "prod" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,

		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				slog.Error("request", append(attrs, "err", v.Error)...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	})
}
