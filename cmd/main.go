package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rikonaka/watchdog/internal/app/docs"
	"github.com/rikonaka/watchdog/internal/app/router"
	"github.com/rikonaka/watchdog/internal/module/watchdog"
	"github.com/rikonaka/watchdog/internal/pkg/client/postgres"
	"github.com/rikonaka/watchdog/internal/pkg/client/redis"
	"github.com/rikonaka/watchdog/internal/pkg/log"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/common/version"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           watchdog
// @version         0.1.0
// @description     fleet watchdog collector backend
// @schema			http
// @BasePath        /
func main() {
	var (
		logOutput          string
		logFormat          string
		logFile            string
		logLevel           string
		authSecret         string
		postgresDSN        string
		pgMaxConns         int
		redisAddr          string
		redisPassword      string
		redisDB            int
		cacheTTL           time.Duration
		ensureSchema       bool
		srvListenAddr      string
		srvShutdownTimeout time.Duration
	)
	app := kingpin.New(filepath.Base(os.Args[0]), "fleet watchdog collector server.")
	app.HelpFlag.Short('h')
	// Logging related flags
	app.Flag("log.level", "Log level, one of [debug, info, warn, error].").Default("info").EnumVar(&logLevel, "debug", "info", "warn", "error")
	app.Flag("log.output", "Log output, one of [stdout, stderr, file].").Default("stderr").EnumVar(&logOutput, "stdout", "stderr", "file")
	app.Flag("log.format", "Log format, one of [json, text].").Default("text").EnumVar(&logFormat, "json", "text")
	app.Flag("log.file", "Log file path when --log.output=file.").PlaceHolder("PATH").StringVar(&logFile)
	app.Flag("auth.secret", "Shared password that /update payloads must carry.").Envar("WATCHDOG_SECRET").Required().StringVar(&authSecret)
	app.Flag("postgres.dsn", "PostgreSQL DSN for the history store.").Envar("WATCHDOG_POSTGRES_DSN").Required().StringVar(&postgresDSN)
	app.Flag("postgres.max-conns", "Connection pool size for the history store.").Default("4").IntVar(&pgMaxConns)
	app.Flag("redis.addr", "Redis address for the live snapshot store (host:port).").Default("127.0.0.1:6379").StringVar(&redisAddr)
	app.Flag("redis.password", "Redis password, empty for none.").Envar("WATCHDOG_REDIS_PASSWORD").Default("").StringVar(&redisPassword)
	app.Flag("redis.db", "Redis database number.").Default("0").IntVar(&redisDB)
	app.Flag("cache.ttl", "Lifetime of a live snapshot before a host counts as gone (e.g. 60s).").Default("60s").DurationVar(&cacheTTL)
	app.Flag("db.ensure-schema", "Create the history tables at startup if missing.").Default("false").BoolVar(&ensureSchema)
	app.Flag("server.listen-addr", "Server listen address (e.g. :7070 or 127.0.0.1:7070)").Default(":7070").StringVar(&srvListenAddr)
	app.Flag("server.shutdown-timeout", "Graceful shutdown timeout (e.g. 10s)").Default("10s").DurationVar(&srvShutdownTimeout)
	// Cross-flag validation
	app.PreAction(func(*kingpin.ParseContext) error {
		if strings.EqualFold(logOutput, "file") {
			if !isValidFilePath(logFile) {
				return fmt.Errorf("invalid --log.file path: %q", logFile)
			}
		}
		return nil
	})
	app.Version(version.Print("watchdog"))

	_, err := app.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("failed to parse commandline arguments: %w", err))
		app.Usage(os.Args[1:])
		os.Exit(2)
	}
	logger, logClose, err := log.NewLogger(logOutput, logFormat, logFile, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logClose()

	dbctx, dbcancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dbcancel()
	history, err := postgres.New(dbctx, postgresDSN, postgres.WithMaxConns(int32(pgMaxConns)))
	if err != nil {
		logger.Error("unable to connect to postgres", slog.Any("err", err))
		os.Exit(1)
	}
	defer history.Close()
	if ensureSchema {
		if err := history.EnsureSchema(dbctx); err != nil {
			logger.Error("unable to create history tables", slog.Any("err", err))
			os.Exit(1)
		}
	}
	cache, err := redis.New(dbctx, redisAddr, redisPassword, redisDB, cacheTTL)
	if err != nil {
		logger.Error("unable to connect to redis", slog.Any("err", err))
		os.Exit(1)
	}
	watchdogRouter := watchdog.NewRouter(cache, history, authSecret, logger)

	// Build router
	r := router.New(logger)

	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.Register(
		watchdogRouter,
	)
	router.Mount(r)
	srv := &http.Server{
		Addr:              srvListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in background
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srvListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", slog.Any("err", err))
			os.Exit(1)
		}
	case <-quit:
		// proceed to shutdown
	}
	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), srvShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	logger.Info("server exiting")
}

// isValidFilePath performs a light-weight validation for file paths.
// It accepts both absolute and relative paths and rejects empty paths
// or paths that end with a path separator (which usually indicate a directory).
func isValidFilePath(p string) bool {
	if strings.TrimSpace(p) == "" {
		return false
	}
	// Reject paths that end with a separator, which imply directories
	if strings.HasSuffix(p, string(os.PathSeparator)) {
		return false
	}
	base := filepath.Base(p)
	if base == "." || base == string(os.PathSeparator) {
		return false
	}
	return true
}
