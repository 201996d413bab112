package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"roomdesk/internal/api"
	"roomdesk/internal/auth"
	"roomdesk/internal/config"
	"roomdesk/internal/draft"
	"roomdesk/internal/gateway"
	"roomdesk/internal/gateway/rediscache"
	sqlitegw "roomdesk/internal/gateway/sqlite"
	"roomdesk/internal/metrics"
	"roomdesk/internal/model"
	"roomdesk/internal/reminder"
)

// reference holds the hot-reloadable room configuration.
type reference struct {
	cfg atomic.Pointer[config.RoomsConfig]
}

func (r *reference) Rooms() []model.Room {
	return r.cfg.Load().ModelRooms()
}

func (r *reference) RepeatOptions() []model.RepeatOption {
	return r.cfg.Load().Repeats()
}

func (r *reference) roomName(roomID string) string {
	for _, room := range r.Rooms() {
		if room.ID == roomID {
			return room.Name
		}
	}
	return ""
}

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("ROOMDESK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ref := &reference{}
	err = config.WatchRooms(ctx, os.Getenv("ROOMDESK_ROOMS_PATH"), 30*time.Second, func(rc *config.RoomsConfig) {
		ref.cfg.Store(rc)
		logger.Info().Int("rooms", len(rc.Rooms)).Msg("room config loaded")
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load rooms config")
	}

	store, err := sqlitegw.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer store.Close()

	var gw gateway.Gateway = store
	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.RedisCacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		gw = rediscache.New(store, rdb, cfg.RedisCacheTTL(), logger)
	}

	manager := draft.NewManager(gw, ref.RepeatOptions(), logger)

	var authHandler *api.AuthHandler
	if cfg.Auth.GoogleClientID != "" {
		oauthCfg := auth.GoogleConfig(cfg.Auth.GoogleClientID, cfg.Auth.GoogleClientSecret, cfg.Auth.RedirectURL)
		authHandler = api.NewAuthHandler(oauthCfg, cfg.Auth.AllowedDomain, logger)
	}

	handler := api.NewHandler(manager, ref, api.CalendarWindow{
		DayStartHour: cfg.Calendar.DayStartHour,
		DayEndHour:   cfg.Calendar.DayEndHour,
	}, logger)

	accessLog := &api.RouterLogWriter{Log: func(msg string) {
		logger.Debug().Msg(msg)
	}}
	router := api.NewRouter(handler, authHandler, accessLog)

	if cfg.Reminders.Enabled && cfg.Reminders.BotToken != "" {
		notifier, err := reminder.NewTelegramNotifier(
			cfg.Reminders.BotToken, cfg.Reminders.RatePerSecond, cfg.Reminders.Burst)
		if err != nil {
			logger.Fatal().Err(err).Msg("create reminder notifier")
		}
		svc := reminder.NewService(reminder.Config{
			Lead:          cfg.ReminderLead(),
			CheckInterval: cfg.ReminderCheckInterval(),
		}, store, notifier, ref.roomName, logger)
		go svc.Run(ctx)
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, store, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("roomdesk started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func startHealthServer(ctx context.Context, port int, store *sqlitegw.Gateway, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := store.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
