package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/movira/ride-consistency-service/internal/domain"
	"github.com/movira/ride-consistency-service/internal/repository"
	"github.com/movira/ride-consistency-service/pkg/logger/sl"
)

// ReconcileService runs repair passes over driver derived fields.
type ReconcileService interface {
	// RunPass reconciles the given drivers, or every driver with a
	// profile when the slice is empty. The pass is idempotent and safe
	// alongside live traffic: every write is conditioned on the pre-read
	// state. It aborts between drivers when ctx is cancelled or the
	// store becomes unavailable, returning the partial report either way.
	RunPass(ctx context.Context, driverIDs []int64) (*domain.Report, error)
}

type ReconcileServiceImpl struct {
	BaseService
	profiles   repository.DriverProfileRepository
	ratings    repository.RatingRepository
	photos     PhotoService
	maxRetries int
}

func NewReconcileService(
	db Transactor,
	log *slog.Logger,
	profiles repository.DriverProfileRepository,
	ratings repository.RatingRepository,
	photos PhotoService,
	maxRetries int,
) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		BaseService: NewBaseService(db, log),
		profiles:    profiles,
		ratings:     ratings,
		photos:      photos,
		maxRetries:  maxRetries,
	}
}

func (s *ReconcileServiceImpl) RunPass(ctx context.Context, driverIDs []int64) (*domain.Report, error) {
	const op = "internal.service.reconcile.RunPass"
	log := s.log.With(slog.String("op", op))

	report := &domain.Report{StartedAt: time.Now().UTC()}
	defer func() {
		report.FinishedAt = time.Now().UTC()
		reconcilePassDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}()

	if len(driverIDs) == 0 {
		var err error

		driverIDs, err = s.profiles.ListDriverIDs(ctx)
		if err != nil {
			return report, fmt.Errorf("%s: failed to list drivers: %w", op, err)
		}
	}

	log.Info("reconciliation pass started", slog.Int("drivers", len(driverIDs)))

	for _, driverID := range driverIDs {
		// Abortable between drivers; no driver is ever left half-applied
		// because each field repair is a single conditional update.
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("%s: pass aborted: %w", op, err)
		}

		driverReport, err := s.reconcileDriver(ctx, driverID)
		report.Add(driverReport.RatingAggregate)
		report.Add(driverReport.Photo)
		report.Drivers = append(report.Drivers, driverReport)

		reconcileChecksTotal.WithLabelValues("rating_aggregate", string(driverReport.RatingAggregate.State)).Inc()
		reconcileChecksTotal.WithLabelValues("photo", string(driverReport.Photo.State)).Inc()

		if err != nil && errors.Is(err, apperrors.ErrStoreUnavailable) {
			return report, fmt.Errorf("%s: pass aborted at driver %d: %w", op, driverID, err)
		}
	}

	log.Info("reconciliation pass finished",
		slog.Int("checked", report.Summary.Checked),
		slog.Int("repaired", report.Summary.Repaired),
		slog.Int("conflicts", report.Summary.Conflicts),
		slog.Int("failed", report.Summary.Failed),
	)

	return report, nil
}

// reconcileDriver repairs both derived fields of one driver. A non-nil
// error is informational unless it is the store failing; per-driver
// problems are already folded into the field checks.
func (s *ReconcileServiceImpl) reconcileDriver(ctx context.Context, driverID int64) (domain.DriverReport, error) {
	report := domain.DriverReport{DriverID: driverID}

	ratingCheck, err := s.reconcileRating(ctx, driverID)
	report.RatingAggregate = ratingCheck
	if err != nil {
		report.Photo = domain.FieldCheck{State: domain.CheckFailed, Detail: "skipped: rating check failed"}
		return report, err
	}

	photo, err := s.photos.ReconcilePhoto(ctx, driverID)
	if err != nil {
		s.log.Error("photo reconciliation failed", slog.Int64("driver_id", driverID), sl.Err(err))
		report.Photo = domain.FieldCheck{State: domain.CheckFailed, Detail: err.Error()}

		return report, err
	}

	report.Photo = photoFieldCheck(photo)

	return report, nil
}

// reconcileRating compares the stored aggregate with a recompute from the
// rating rows inside one transaction, so the comparison and the
// conditional repair see the same snapshot. Losing the version check to a
// concurrent writer re-reads and tries again, up to the retry budget.
func (s *ReconcileServiceImpl) reconcileRating(ctx context.Context, driverID int64) (domain.FieldCheck, error) {
	const op = "internal.service.reconcile.reconcileRating"

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var (
			check   domain.FieldCheck
			settled bool
		)

		err := s.transaction(ctx, op, func(tx *sqlx.Tx) error {
			profile, err := s.profiles.GetByDriverID(ctx, tx, driverID)
			if err != nil {
				return err
			}

			agg, err := s.ratings.AggregateByDriverID(ctx, tx, driverID)
			if err != nil {
				return err
			}

			if aggregatesEqual(profile, agg) {
				check = domain.FieldCheck{State: domain.CheckOK}
				settled = true

				return nil
			}

			applied, err := s.profiles.UpdateRatingAggregate(ctx, tx, driverID, profile.Version, agg.Count, agg.Mean)
			if err != nil {
				return err
			}

			if applied {
				check = domain.FieldCheck{
					State: domain.CheckRepaired,
					Detail: fmt.Sprintf("stored count=%d mean=%s, recomputed count=%d mean=%s",
						profile.RatingCount, meanString(profile.RatingMean), agg.Count, meanString(agg.Mean)),
				}
				settled = true
			}

			return nil
		})
		if err != nil {
			return domain.FieldCheck{State: domain.CheckFailed, Detail: err.Error()}, err
		}

		if settled {
			return check, nil
		}

		aggregateRetriesTotal.Inc()
	}

	return domain.FieldCheck{
		State:  domain.CheckFailed,
		Detail: fmt.Sprintf("%v after %d attempts", apperrors.ErrConcurrentWriteLost, s.maxRetries),
	}, nil
}

func aggregatesEqual(profile *domain.DriverProfile, agg *domain.RatingAggregate) bool {
	if profile.RatingCount != agg.Count {
		return false
	}

	if (profile.RatingMean == nil) != (agg.Mean == nil) {
		return false
	}

	if profile.RatingMean == nil {
		return true
	}

	// Compared at two decimals, the precision surfaced to callers. Last-bit
	// float differences between the incremental path and a recompute are
	// not drift.
	return roundMean(*profile.RatingMean) == roundMean(*agg.Mean)
}

func meanString(mean *float64) string {
	if mean == nil {
		return "null"
	}

	return fmt.Sprintf("%.2f", *mean)
}

func photoFieldCheck(p *domain.PhotoReconciliation) domain.FieldCheck {
	switch p.State {
	case domain.PhotoRepaired:
		return domain.FieldCheck{State: domain.CheckRepaired, Detail: fmt.Sprintf("reference set to '%s'", p.Reference)}
	case domain.PhotoConflict:
		return domain.FieldCheck{State: domain.CheckConflict, Detail: p.Detail}
	default:
		return domain.FieldCheck{State: domain.CheckOK, Detail: p.Detail}
	}
}
