// Command reconciler is the on-demand invocation surface of the
// consistency engine: it resolves active assignments and runs
// reconciliation passes from the command line, printing results as JSON.
//
// Exit codes: 0 success (including "no active assignment"), 1 usage or
// configuration error, 2 invariant violation, 3 unrepairable conflicts
// found, 4 store unavailable.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/movira/ride-consistency-service/internal/config"
	"github.com/movira/ride-consistency-service/internal/repository/postgres"
	"github.com/movira/ride-consistency-service/internal/service"
	"github.com/movira/ride-consistency-service/internal/uploads"
	"github.com/movira/ride-consistency-service/pkg/logger/slogpretty"
)

const (
	exitOK               = 0
	exitUsage            = 1
	exitInvariant        = 2
	exitConflict         = 3
	exitStoreUnavailable = 4
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	os.Exit(run(ctx))
}

func run(ctx context.Context) int {
	var (
		resolveRequest = flag.Int64("resolve", 0, "resolve the active assignment for the given request id")
		driverList     = flag.String("drivers", "", "comma-separated driver ids to reconcile (default: all)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return exitUsage
	}

	log := slogpretty.SetupLogger(cfg.Env)

	db, err := postgres.NewDB(cfg.Postgres, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init db: %v\n", err)
		return exitStoreUnavailable
	}
	defer db.DB().Close()

	if *resolveRequest > 0 {
		return resolve(ctx, log, db, *resolveRequest)
	}

	driverIDs, err := parseDriverIDs(*driverList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -drivers: %v\n", err)
		return exitUsage
	}

	return reconcile(ctx, cfg, log, db, driverIDs)
}

func resolve(ctx context.Context, log *slog.Logger, db *postgres.Postgres, requestID int64) int {
	svc := service.NewAssignmentService(log, postgres.NewAssignmentRepository(db.DB(), log))

	assignment, err := svc.ActiveAssignmentFor(ctx, requestID)
	switch {
	case err == nil:
		printJSON(map[string]interface{}{"assignment": assignment})
		return exitOK
	case errors.Is(err, apperrors.ErrNotFound):
		// Nobody is serving this request right now. Expected, not an error.
		printJSON(map[string]interface{}{"assignment": nil})
		return exitOK
	case errors.Is(err, apperrors.ErrInvariantViolation):
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitInvariant
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitStoreUnavailable
	}

	fmt.Fprintf(os.Stderr, "%v\n", err)

	return exitUsage
}

func reconcile(ctx context.Context, cfg *config.Config, log *slog.Logger, db *postgres.Postgres, driverIDs []int64) int {
	store, err := newUploadStore(ctx, cfg.Uploads, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init upload store: %v\n", err)
		return exitUsage
	}

	ratingRepo := postgres.NewRatingRepository(db.DB(), log)
	profileRepo := postgres.NewDriverProfileRepository(db.DB(), log)
	photoSvc := service.NewPhotoService(db.DB(), log, profileRepo, store)
	svc := service.NewReconcileService(db.DB(), log, profileRepo, ratingRepo, photoSvc, cfg.Reconciler.MaxRetries)

	report, err := svc.RunPass(ctx, driverIDs)
	if report != nil {
		printJSON(report)
	}

	switch {
	case err != nil && errors.Is(err, apperrors.ErrStoreUnavailable):
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitStoreUnavailable
	case err != nil:
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitUsage
	case report.Summary.Conflicts > 0:
		return exitConflict
	}

	return exitOK
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

func parseDriverIDs(list string) ([]int64, error) {
	if list == "" {
		return nil, nil
	}

	parts := strings.Split(list, ",")
	ids := make([]int64, 0, len(parts))

	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("'%s' is not a valid driver id", part)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode output: %v\n", err)
	}
}
