package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/movira/ride-consistency-service/internal/config"
	"github.com/movira/ride-consistency-service/internal/repository/postgres"
	"github.com/movira/ride-consistency-service/internal/service"
	myhttp "github.com/movira/ride-consistency-service/internal/transport/http"
	"github.com/movira/ride-consistency-service/internal/uploads"
	"github.com/movira/ride-consistency-service/pkg/logger/sl"
	"github.com/movira/ride-consistency-service/pkg/logger/slogpretty"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.MustLoad()
	log := slogpretty.SetupLogger(cfg.Env)

	log.Info("starting ride-consistency-service", slog.String("env", cfg.Env))

	errChan := make(chan error, 1)

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("failed to init db: %v", err)
	}
	// Close failures are only logged: errChan is closed by startServer
	// on shutdown, so sending here could panic.
	defer func() {
		if err := db.DB().Close(); err != nil {
			log.Error("db close failed", sl.Err(err))
		}
	}()

	store, err := newUploadStore(ctx, cfg.Uploads, log)
	if err != nil {
		return fmt.Errorf("failed to init upload store: %v", err)
	}

	requestRepo := postgres.NewServiceRequestRepository(db.DB(), log)
	assignmentRepo := postgres.NewAssignmentRepository(db.DB(), log)
	ratingRepo := postgres.NewRatingRepository(db.DB(), log)
	profileRepo := postgres.NewDriverProfileRepository(db.DB(), log)

	assignmentSvc := service.NewAssignmentService(log, assignmentRepo)
	ratingSvc := service.NewRatingService(db.DB(), log, ratingRepo, profileRepo, cfg.Reconciler.MaxRetries)
	photoSvc := service.NewPhotoService(db.DB(), log, profileRepo, store)
	reconcileSvc := service.NewReconcileService(db.DB(), log, profileRepo, ratingRepo, photoSvc, cfg.Reconciler.MaxRetries)

	srv := myhttp.NewServer(log, assignmentSvc, ratingSvc, reconcileSvc, profileRepo, requestRepo)
	httpServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Routes(),
	}

	go startServer(log, httpServer, errChan)

	if cfg.Reconciler.Interval > 0 {
		go runPeriodicPass(ctx, log, reconcileSvc, cfg.Reconciler.Interval)
	}

	select {
	case err := <-errChan:
		return fmt.Errorf("http server error: %v", err)

	case <-ctx.Done():
		log.Info("stopping server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shuting down http server: %v", err)
	}

	return nil
}

func newUploadStore(ctx context.Context, cfg config.Uploads, log *slog.Logger) (uploads.Store, error) {
	switch cfg.Backend {
	case "s3":
		return uploads.NewMinioStore(ctx, cfg.S3, log)
	case "local", "":
		return uploads.NewLocalStore(cfg, log), nil
	}

	return nil, fmt.Errorf("unknown uploads backend '%s'", cfg.Backend)
}

func startServer(log *slog.Logger, httpServer *http.Server, errChan chan error) {
	defer close(errChan)

	log.Info("service started", slog.String("addr", httpServer.Addr))

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		errChan <- fmt.Errorf("error listening and serving: %v", err)
	}
}

// runPeriodicPass runs reconciliation off the request-serving path on a
// fixed interval until the context is cancelled.
func runPeriodicPass(ctx context.Context, log *slog.Logger, svc service.ReconcileService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := svc.RunPass(ctx, nil)
			if err != nil {
				log.Error("periodic reconciliation pass failed", sl.Err(err))
				continue
			}

			if report.Summary.Repaired > 0 || report.Summary.Conflicts > 0 {
				log.Warn("periodic reconciliation pass found drift",
					slog.Int("repaired", report.Summary.Repaired),
					slog.Int("conflicts", report.Summary.Conflicts),
				)
			}
		}
	}
}
