package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/movira/ride-consistency-service/internal/domain"
	"github.com/movira/ride-consistency-service/internal/repository"
	"github.com/movira/ride-consistency-service/internal/uploads"
	"github.com/movira/ride-consistency-service/pkg/logger/sl"
)

// PhotoService reconciles a driver's stored photo reference against the
// files actually present in the driver's upload area.
type PhotoService interface {
	// ReconcilePhoto applies the repair policy: fill a null reference
	// from the upload area, leave everything else alone. It only ever
	// writes through a reference-is-still-null conditional update, and it
	// reports a conflict instead of guessing when the stored reference
	// and the uploaded candidates disagree.
	ReconcilePhoto(ctx context.Context, driverID int64) (*domain.PhotoReconciliation, error)
}

type PhotoServiceImpl struct {
	db       *sqlx.DB
	log      *slog.Logger
	profiles repository.DriverProfileRepository
	store    uploads.Store
}

func NewPhotoService(
	db *sqlx.DB,
	log *slog.Logger,
	profiles repository.DriverProfileRepository,
	store uploads.Store,
) *PhotoServiceImpl {
	return &PhotoServiceImpl{
		db:       db,
		log:      log,
		profiles: profiles,
		store:    store,
	}
}

func (s *PhotoServiceImpl) ReconcilePhoto(ctx context.Context, driverID int64) (*domain.PhotoReconciliation, error) {
	const op = "internal.service.photo.ReconcilePhoto"
	log := s.log.With(slog.String("op", op), slog.Int64("driver_id", driverID))

	profile, err := s.profiles.GetByDriverID(ctx, s.db, driverID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get driver profile: %w", op, err)
	}

	files, err := s.store.ListDriverFiles(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list driver files: %w", op, err)
	}

	candidates := uploads.ProfileCandidates(files)

	if profile.PhotoReference != nil {
		return s.reconcileStored(log, driverID, *profile.PhotoReference, files, candidates), nil
	}

	if len(candidates) == 0 {
		// Absence of evidence is not evidence of absence: nothing to
		// repair, but worth a trace for manual follow-up.
		log.Info("photo reference is null and no candidate file exists")

		return &domain.PhotoReconciliation{
			State:  domain.PhotoUnchanged,
			Detail: "reference null, no candidate file",
		}, nil
	}

	best := candidates[0]

	applied, err := s.profiles.SetPhotoReferenceIfNull(ctx, s.db, driverID, best.Ref)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to set photo reference: %w", op, err)
	}

	if !applied {
		// The field became non-null between our read and write. Trust the
		// fresher writer.
		log.Info("photo reference was set concurrently, leaving it")

		return &domain.PhotoReconciliation{
			State:  domain.PhotoUnchanged,
			Detail: "reference set concurrently",
		}, nil
	}

	photoRepairsTotal.Inc()
	log.Info("photo reference repaired", slog.String("reference", best.Ref))

	return &domain.PhotoReconciliation{
		State:     domain.PhotoRepaired,
		Reference: best.Ref,
	}, nil
}

// reconcileStored handles the non-null-reference cases, none of which
// write: either the reference is fine, or the source data contradicts
// itself and a human has to decide.
func (s *PhotoServiceImpl) reconcileStored(log *slog.Logger, driverID int64, ref string, files, candidates []uploads.FileInfo) *domain.PhotoReconciliation {
	for _, f := range files {
		if f.Ref == ref {
			return &domain.PhotoReconciliation{
				State:     domain.PhotoUnchanged,
				Reference: ref,
			}
		}
	}

	if len(candidates) > 0 {
		conflict := &apperrors.PhotoConflictError{
			DriverID:     driverID,
			StoredRef:    ref,
			CandidateRef: candidates[0].Ref,
		}

		photoConflictsTotal.Inc()
		log.Warn("photo reference disagrees with uploaded candidates", sl.Err(conflict))

		return &domain.PhotoReconciliation{
			State:     domain.PhotoConflict,
			Reference: ref,
			Detail:    conflict.Error(),
		}
	}

	// Never auto-clear a non-null field.
	log.Warn("photo reference points to a missing file", slog.String("stored", ref))

	return &domain.PhotoReconciliation{
		State:     domain.PhotoUnchanged,
		Reference: ref,
		Detail:    "referenced file missing",
	}
}
