package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/movira/ride-consistency-service/internal/domain"
)

type DriverProfileRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewDriverProfileRepository(db *sqlx.DB, log *slog.Logger) *DriverProfileRepository {
	return &DriverProfileRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func profileColumns() []string {
	return []string{"driver_id", "rating_count", "rating_mean", "photo_reference", "version", "updated_at"}
}

func (r *DriverProfileRepository) GetByDriverID(ctx context.Context, ext sqlx.ExtContext, driverID int64) (*domain.DriverProfile, error) {
	const op = "internal.repository.postgres.DriverProfileRepository.GetByDriverID"

	query, args, err := r.sq.Select(profileColumns()...).
		From("driver_profiles").
		Where(sq.Eq{"driver_id": driverID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var profile domain.DriverProfile
	if err := sqlx.GetContext(ctx, ext, &profile, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: driver profile with id %d", op, apperrors.ErrNotFound, driverID)
		}

		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	return &profile, nil
}

func (r *DriverProfileRepository) ListDriverIDs(ctx context.Context) ([]int64, error) {
	const op = "internal.repository.postgres.DriverProfileRepository.ListDriverIDs"

	query, args, err := r.sq.Select("driver_id").
		From("driver_profiles").
		OrderBy("driver_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var driverIDs []int64
	if err := r.db.SelectContext(ctx, &driverIDs, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	return driverIDs, nil
}

func (r *DriverProfileRepository) ListProfiles(ctx context.Context) ([]domain.DriverProfile, error) {
	const op = "internal.repository.postgres.DriverProfileRepository.ListProfiles"

	query, args, err := r.sq.Select(profileColumns()...).
		From("driver_profiles").
		OrderBy("driver_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var profiles []domain.DriverProfile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	return profiles, nil
}

// UpdateRatingAggregate is a compare-and-swap on the profile row: the
// version predicate guarantees the write lands only on the exact state the
// caller read. A false return means the caller lost the race and must
// re-read before retrying.
func (r *DriverProfileRepository) UpdateRatingAggregate(ctx context.Context, ext sqlx.ExtContext, driverID int64, version int64, count int, mean *float64) (bool, error) {
	const op = "internal.repository.postgres.DriverProfileRepository.UpdateRatingAggregate"

	query, args, err := r.sq.Update("driver_profiles").
		Set("rating_count", count).
		Set("rating_mean", mean).
		Set("version", version+1).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"driver_id": driverID, "version": version}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	return affected == 1, nil
}

// SetPhotoReferenceIfNull repairs an empty photo reference without ever
// clobbering a concurrent upload-completion write: the IS NULL predicate
// makes the update a no-op if the field became non-null in the meantime.
func (r *DriverProfileRepository) SetPhotoReferenceIfNull(ctx context.Context, ext sqlx.ExtContext, driverID int64, ref string) (bool, error) {
	const op = "internal.repository.postgres.DriverProfileRepository.SetPhotoReferenceIfNull"

	query, args, err := r.sq.Update("driver_profiles").
		Set("photo_reference", ref).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"driver_id": driverID, "photo_reference": nil}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: failed to build update query: %w", op, err)
	}

	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to read rows affected: %w", op, err)
	}

	return affected == 1, nil
}
