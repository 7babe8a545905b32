package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"clipstudio/internal/config"
	"clipstudio/internal/logging"
	"clipstudio/internal/ports"
	"clipstudio/internal/ports/adapters/ffmpeg"
	"clipstudio/internal/ports/adapters/gemini"
	"clipstudio/internal/server"
	"clipstudio/internal/storage"
	"clipstudio/internal/store"
	"clipstudio/internal/workers"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, *configFlag)
		},
	}
}

func runServe(cmd *cobra.Command, configPath string) error {
	cfg, path, exists, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stdout, logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return err
	}
	if exists {
		log.Info("config loaded", "path", path)
	} else {
		log.Info("config file not found, using defaults", "path", path)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "clipstudio.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another clipstudio instance is already running")
	}
	defer func() { _ = lock.Unlock() }()

	db, err := store.Open(cfg.Paths.DatabasePath)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}()

	files, err := storage.New(cfg.Paths.UploadsDir, cfg.Paths.OutputsDir)
	if err != nil {
		return err
	}

	codec, err := ffmpeg.New(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath, cfg.FFmpeg.WorkDir)
	if err != nil {
		return err
	}

	var profiles ports.ProfileGenerator
	if cfg.AI.Mock {
		log.Info("cut-profile generator running in mock mode")
		profiles = gemini.NewMock()
	} else {
		profiles = gemini.New(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
	}

	w := workers.New(workers.Deps{
		Codec:    codec,
		Profiles: profiles,
		Files:    files,
		Log:      log,
	})

	srv := server.New(server.Deps{
		Workers: w,
		Files:   files,
		DB:      db,
		Version: Version,
		Log:     log,
	})

	httpSrv := &http.Server{
		Addr:    cfg.Server.Bind,
		Handler: srv.Router(),
		// No global read timeout: clip uploads can take minutes.
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpSrv.ListenAndServe()
	}()
	log.Info("server listening", "addr", cfg.Server.Bind, "version", Version)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
