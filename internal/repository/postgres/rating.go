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

type RatingRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewRatingRepository(db *sqlx.DB, log *slog.Logger) *RatingRepository {
	return &RatingRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *RatingRepository) GetByID(ctx context.Context, ratingID int64) (*domain.Rating, error) {
	const op = "internal.repository.postgres.RatingRepository.GetByID"

	query, args, err := r.sq.Select("id", "request_id", "driver_id", "value", "created_at").
		From("ratings").
		Where(sq.Eq{"id": ratingID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var rating domain.Rating
	if err := r.db.GetContext(ctx, &rating, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: rating with id %d", op, apperrors.ErrNotFound, ratingID)
		}

		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	return &rating, nil
}

func (r *RatingRepository) ListByDriverID(ctx context.Context, driverID int64) ([]domain.Rating, error) {
	const op = "internal.repository.postgres.RatingRepository.ListByDriverID"

	query, args, err := r.sq.Select("id", "request_id", "driver_id", "value", "created_at").
		From("ratings").
		Where(sq.Eq{"driver_id": driverID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var ratings []domain.Rating
	if err := r.db.SelectContext(ctx, &ratings, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	return ratings, nil
}

// AggregateByDriverID is the ground-truth computation for the derived
// rating fields: a full COUNT and AVG over the driver's rating rows. The
// mean comes back at full float precision, matching what the profile
// column stores.
func (r *RatingRepository) AggregateByDriverID(ctx context.Context, ext sqlx.ExtContext, driverID int64) (*domain.RatingAggregate, error) {
	const op = "internal.repository.postgres.RatingRepository.AggregateByDriverID"

	query, args, err := r.sq.Select(
		"COUNT(*) AS count",
		"AVG(value)::float8 AS mean",
	).
		From("ratings").
		Where(sq.Eq{"driver_id": driverID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var agg domain.RatingAggregate
	if err := sqlx.GetContext(ctx, ext, &agg, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	return &agg, nil
}
