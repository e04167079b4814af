// Package main initializes and starts the API challenges server, setting
// up configuration, logging, metrics, the session registry, services,
// handlers and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/apichallenges/internal/certgen"
	"github.com/atinyakov/apichallenges/internal/challenge"
	"github.com/atinyakov/apichallenges/internal/config"
	"github.com/atinyakov/apichallenges/internal/logger"
	"github.com/atinyakov/apichallenges/internal/metrics"
	"github.com/atinyakov/apichallenges/internal/middleware"
	"github.com/atinyakov/apichallenges/internal/repository"
	"github.com/atinyakov/apichallenges/internal/server/handler/http"
	"github.com/atinyakov/apichallenges/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	var registryOpts []service.Option
	if options.Metrics {
		m = metrics.NewMetrics()
		registryOpts = append(registryOpts, service.WithCompletionHook(func(_ string, id challenge.ID) {
			m.RecordChallenge(string(id))
		}))
	}

	// Session registry and auth service.
	sessions := service.NewSessionRegistry(registryOpts...)
	authService := service.NewAuthService(repository.NewMemoryAuthRepository())

	if m != nil {
		metrics.StartRegistryReporter(ctx, sessions, m, options.ReportInterval.Duration, zapLogger)
	}

	var onLimited func()
	if m != nil {
		onLimited = m.RecordRateLimited
	}
	limiter := middleware.NewRateLimiter(options.RateLimit, options.RateBurst, onLimited)

	// Create HTTP handlers.
	todoHandler := &http.TodoHandler{}
	challengerHandler := &http.ChallengerHandler{Sessions: sessions}
	secretHandler := &http.SecretHandler{AuthService: authService}
	if m != nil {
		secretHandler.Metrics = m
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(todoHandler, challengerHandler, secretHandler, zapLogger, m, limiter)

	server := &nethttp.Server{
		Addr:         options.Port,
		Handler:      router,
		ReadTimeout:  options.ReadTimeout.Duration,
		WriteTimeout: options.WriteTimeout.Duration,
		IdleTimeout:  options.IdleTimeout.Duration,
	}

	if options.TLSEnabled() {
		cert, err := loadCertificate(options)
		if err != nil {
			zapLogger.Fatal("failed to load server TLS cert/key", zap.Error(err))
		}
		server.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	var err error
	if server.TLSConfig != nil {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS("", "")
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// loadCertificate reads the configured key pair or generates a
// self-signed certificate for the listen host.
func loadCertificate(options *config.Options) (tls.Certificate, error) {
	if options.TLSCert != "" && options.TLSKey != "" {
		return certgen.LoadKeyPair(options.TLSCert, options.TLSKey)
	}
	host, _, err := net.SplitHostPort(options.Port)
	if err != nil || host == "" {
		host = "localhost"
	}
	return certgen.SelfSigned([]string{host}, 365*24*time.Hour)
}
