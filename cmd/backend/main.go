package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bigform/internal/config"
	"bigform/internal/logger"
	"bigform/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bigform: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	secret, err := sessionSecret(cfg, log)
	if err != nil {
		return err
	}

	flash, closeFlash, err := buildFlashStore(cfg)
	if err != nil {
		return err
	}
	defer closeFlash()

	srv, err := server.New(server.Config{
		Addr: cfg.Server.Addr(),
		Build: server.BuildInfo{
			Version: cfg.Build.Version,
			Commit:  cfg.Build.Commit,
		},
		Session: server.SessionConfig{
			Secret:       secret,
			TTL:          cfg.Session.TTL,
			CookieName:   cfg.Session.CookieName,
			SecureCookie: cfg.Session.SecureCookie,
		},
		Flash:          flash,
		Sink:           server.NewLogSink(log),
		Logger:         log,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})
	if err != nil {
		return err
	}

	ln, err := srv.Listen()
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr(), err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting", map[string]interface{}{
			"addr":          cfg.Server.Addr(),
			"flash_backend": cfg.Flash.Backend,
			"version":       cfg.Build.Version,
			"commit":        cfg.Build.Commit,
		})
		errCh <- srv.Serve(ln)
	}()

	if cfg.Server.OpenBrowser {
		timer := openBrowserAfter(time.Second, cfg.Server.URL(), log)
		defer timer.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting_down", map[string]interface{}{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("shutdown_complete", nil)
		return nil
	case err := <-errCh:
		return err
	}
}

// sessionSecret returns the configured signing secret or a random one,
// warning that sessions will not survive a restart.
func sessionSecret(cfg *config.Config, log logger.Logger) ([]byte, error) {
	if cfg.Session.Secret != "" {
		return []byte(cfg.Session.Secret), nil
	}
	secret, err := server.NewSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	log.Warn("session_secret_generated", map[string]interface{}{
		"reason": "no session.secret configured, sessions end on restart",
	})
	return secret, nil
}

// buildFlashStore selects the flash backend. The returned func releases it.
func buildFlashStore(cfg *config.Config) (server.FlashStore, func(), error) {
	switch cfg.Flash.Backend {
	case config.FlashBackendRedis:
		store := server.NewRedisFlashStore(server.NewRedisClient(server.RedisOptions{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}), cfg.Flash.TTL)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return server.NewMemoryFlashStore(cfg.Flash.TTL), func() {}, nil
	}
}
