package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohits-web03/escapegame/internal/api"
	"github.com/rohits-web03/escapegame/internal/config"
	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/repositories"
	"github.com/rohits-web03/escapegame/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var errNoSeedFile = errors.New("no seed file given (use --file or SEED_FILE)")

func runServe(cmd *cobra.Command, v *viper.Viper, log *logrus.Logger) error {
	cfg, err := loadConfig(v, log)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set; login and every authenticated route will fail")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	storage, err := openObjectStorage(cfg, log)
	if err != nil {
		return err
	}

	if cfg.SeedFile != "" {
		if err := seedChallenges(ctx, st, storage, cfg.SeedFile, log); err != nil {
			return err
		}
	}

	opts := api.Options{
		Store:          st,
		Tokens:         identity.NewService(cfg.JWTSecret),
		PublicBaseURL:  cfg.R2.PublicBaseURL,
		FrontendOrigin: cfg.PrimaryOrigin(),
		Cors:           cfg.CorsOptions(),
		Log:            log,
	}
	// A nil *ObjectStorage must not end up inside the interface.
	if storage != nil {
		opts.Signer = storage
	}
	app := api.NewApp(opts)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      app.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.Store, "env": cfg.Environment}).
			Info("Starting escape game server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Shutdown does not touch hijacked websocket connections.
		app.Gateway.Close()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStore returns the configured Store and a function releasing it.
func openStore(cfg *config.Config, log *logrus.Logger) (repositories.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using the in-memory store; data is lost on restart")
		return repositories.NewMemoryStore(), func() {}, nil
	}
	db, err := openPostgres(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return repositories.NewGormStore(db), closeDB, nil
}

func openPostgres(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	if cfg.Store != config.StorePostgres {
		return nil, fmt.Errorf("STORE=%s has no schema to migrate", cfg.Store)
	}
	db, err := repositories.ConnectDatabase(cfg.DBURL, log)
	if err != nil {
		return nil, err
	}
	if err := repositories.AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func openObjectStorage(cfg *config.Config, log *logrus.Logger) (*repositories.ObjectStorage, error) {
	if !cfg.R2.Enabled() {
		if cfg.R2.PublicBaseURL == "" {
			log.Warn("R2 is not configured; challenge illustrations will have no usable URL")
		}
		return nil, nil
	}
	storage, err := repositories.NewObjectStorage(
		cfg.R2.AccessKeyID,
		cfg.R2.SecretAccessKey,
		cfg.R2.AccountID,
		cfg.R2.BucketName,
		cfg.R2.Region,
	)
	if err != nil {
		return nil, err
	}
	log.WithField("bucket", cfg.R2.BucketName).Info("R2 object storage configured")
	return storage, nil
}

var _ services.URLSigner = (*repositories.ObjectStorage)(nil)
