package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tallerhq/backoffice/internal/api"
	"github.com/tallerhq/backoffice/internal/auth"
	"github.com/tallerhq/backoffice/internal/cache"
	"github.com/tallerhq/backoffice/internal/config"
	"github.com/tallerhq/backoffice/internal/gateway"
	"github.com/tallerhq/backoffice/internal/i18n"
	"github.com/tallerhq/backoffice/internal/metrics"
	"github.com/tallerhq/backoffice/internal/migration"
	"github.com/tallerhq/backoffice/internal/storage"
	"github.com/tallerhq/backoffice/internal/storage/local"
	"github.com/tallerhq/backoffice/internal/storage/rest"
	"github.com/tallerhq/backoffice/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	// The local store is always open: it is the record store in local-only
	// mode and the migration source plus marker store in hosted mode.
	localStore, err := local.New(cfg.LocalPath)
	if err != nil {
		log.Error("failed to open local store", "path", cfg.LocalPath, "error", err)
		os.Exit(1)
	}
	defer localStore.Close()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Operating mode is decided once at startup by the backend detector.
	var (
		store         storage.Store
		cipher        storage.SecretCipher
		authenticator auth.Authenticator
	)
	hosted := cfg.Backend.Configured()
	if hosted {
		client := rest.New(cfg.Backend, cfg.Migration.CallTimeout, log)
		store = client
		cipher = client
		authenticator = auth.NewHostedAuthenticator(client)
		log.Info("hosted backend configured", "url", cfg.Backend.URL)
	} else {
		store = localStore
		cipher = gateway.PlainCipher{}
		authenticator = auth.NewLocalAuthenticator(localStore)
		log.Info("no hosted backend configured, running local-only")
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	gw := gateway.New(store, cipher, cache.New(cacheTTL), m, log)

	orch := migration.New(localStore, gw, cfg.Migration, hosted, m, log)

	secret := cfg.SessionSecret
	if secret == "" {
		// Sessions won't survive a restart without a configured secret.
		secret = randomSecret()
		log.Warn("SESSION_SECRET not set, using an ephemeral secret")
	}
	jwt := auth.NewJWTManager(secret, cfg.SessionTTL)

	srv := api.New(gw, authenticator, jwt, orch, i18n.New(cfg.Locale), m, registry, log)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: h2c.NewHandler(srv.Router(), &http2.Server{}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server starting", "addr", cfg.Addr, "hosted", hosted)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
