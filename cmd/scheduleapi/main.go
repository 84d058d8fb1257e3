package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/deputy-schedule/internal/application"
	"github.com/example/deputy-schedule/internal/archive"
	"github.com/example/deputy-schedule/internal/config"
	httptransport "github.com/example/deputy-schedule/internal/http"
	"github.com/example/deputy-schedule/internal/ics"
	"github.com/example/deputy-schedule/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	location := cfg.Location()
	now := func() time.Time { return time.Now().In(location) }

	eventRepo := sqlite.NewEventRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	bookingRepo := sqlite.NewBookingRepository(db)
	sessionRepo := sqlite.NewSessionRepository(db)

	eventService := application.NewEventServiceWithLogger(eventRepo, idGenerator, now, logger)
	userService := application.NewUserServiceWithLogger(userRepo, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(userRepo, sessionRepo, tokenGenerator, now, logger)
	authService.SetSessionTTL(cfg.SessionTTL)
	bookingService := application.NewBookingServiceWithLogger(bookingRepo, eventRepo, idGenerator, now, logger)

	sweeper := archive.NewSweeper(eventService,
		archive.WithSchedule(cfg.ArchiveSchedule),
		archive.WithSessionPurger(authService),
		archive.WithLogger(logger),
	)
	if err := sweeper.Start(ctx); err != nil {
		logger.Error("failed to start archival sweeper", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	exporter := ics.NewExporter(location)
	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Events:       httptransport.NewEventHandler(eventService, exporter, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Bookings:     httptransport.NewBookingHandler(bookingService, logger),
		Authenticate: httptransport.RequireToken(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("schedule API listening", "addr", server.Addr, "timezone", cfg.Timezone)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
