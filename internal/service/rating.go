package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/movira/ride-consistency-service/internal/domain"
	"github.com/movira/ride-consistency-service/internal/repository"
	"github.com/movira/ride-consistency-service/internal/validation"
)

// RatingService maintains a driver's derived rating aggregate.
type RatingService interface {
	// RecordRating folds an already-persisted rating row into the rated
	// driver's count and mean with an incremental update, retrying the
	// read-modify-write while concurrent writers interleave. It returns
	// apperrors.ErrConcurrentWriteLost once the retry budget is spent.
	RecordRating(ctx context.Context, ratingID int64) (*domain.DriverProfile, error)

	// RecomputeFromSource recounts and re-averages directly from the
	// driver's rating rows. This is the authoritative, non-incremental
	// computation used by reconciliation and integrity checks.
	RecomputeFromSource(ctx context.Context, driverID int64) (*domain.RatingAggregate, error)

	// RatingsForDriver returns the driver's rating rows alongside the
	// recomputed aggregate, the drill-down behind a stored mean.
	RatingsForDriver(ctx context.Context, driverID int64) ([]domain.Rating, *domain.RatingAggregate, error)
}

// recordedRating carries a persisted rating value through the shared
// validation rules before it is folded into an aggregate.
type recordedRating struct {
	Value int `validate:"rating_value"`
}

type RatingServiceImpl struct {
	db         *sqlx.DB
	log        *slog.Logger
	ratings    repository.RatingRepository
	profiles   repository.DriverProfileRepository
	maxRetries int
}

func NewRatingService(
	db *sqlx.DB,
	log *slog.Logger,
	ratings repository.RatingRepository,
	profiles repository.DriverProfileRepository,
	maxRetries int,
) *RatingServiceImpl {
	return &RatingServiceImpl{
		db:         db,
		log:        log,
		ratings:    ratings,
		profiles:   profiles,
		maxRetries: maxRetries,
	}
}

// roundMean rounds a mean to two decimal places for presentation and for
// comparing a stored aggregate with a recompute. The stored value itself
// keeps full precision; rounding it on every incremental step would let
// per-step error accumulate until the aggregate drifts from the source.
func roundMean(mean float64) float64 {
	return math.Round(mean*100) / 100
}

func (s *RatingServiceImpl) RecordRating(ctx context.Context, ratingID int64) (*domain.DriverProfile, error) {
	const op = "internal.service.rating.RecordRating"
	log := s.log.With(slog.String("op", op), slog.Int64("rating_id", ratingID))

	rating, err := s.ratings.GetByID(ctx, ratingID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get rating: %w", op, err)
	}

	if err := validation.ValidateStruct(recordedRating{Value: rating.Value}); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrValidation, err)
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		profile, err := s.profiles.GetByDriverID(ctx, s.db, rating.DriverID)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to get driver profile: %w", op, err)
		}

		var oldMean float64
		if profile.RatingMean != nil {
			oldMean = *profile.RatingMean
		}

		newCount := profile.RatingCount + 1
		newMean := oldMean + (float64(rating.Value)-oldMean)/float64(newCount)

		applied, err := s.profiles.UpdateRatingAggregate(ctx, s.db, rating.DriverID, profile.Version, newCount, &newMean)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to update rating aggregate: %w", op, err)
		}

		if applied {
			ratingsRecordedTotal.Inc()

			profile.RatingCount = newCount
			profile.RatingMean = &newMean
			profile.Version++

			log.Info("rating recorded",
				slog.Int64("driver_id", rating.DriverID),
				slog.Int("rating_count", newCount),
				slog.Float64("rating_mean", newMean),
			)

			return profile, nil
		}

		aggregateRetriesTotal.Inc()
		log.Warn("lost optimistic update, retrying",
			slog.Int64("driver_id", rating.DriverID),
			slog.Int("attempt", attempt+1),
		)
	}

	return nil, fmt.Errorf("%s: %w: driver %d after %d attempts",
		op, apperrors.ErrConcurrentWriteLost, rating.DriverID, s.maxRetries)
}

func (s *RatingServiceImpl) RecomputeFromSource(ctx context.Context, driverID int64) (*domain.RatingAggregate, error) {
	const op = "internal.service.rating.RecomputeFromSource"

	agg, err := s.ratings.AggregateByDriverID(ctx, s.db, driverID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to aggregate ratings: %w", op, err)
	}

	return agg, nil
}

func (s *RatingServiceImpl) RatingsForDriver(ctx context.Context, driverID int64) ([]domain.Rating, *domain.RatingAggregate, error) {
	const op = "internal.service.rating.RatingsForDriver"

	ratings, err := s.ratings.ListByDriverID(ctx, driverID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to list ratings: %w", op, err)
	}

	agg, err := s.ratings.AggregateByDriverID(ctx, s.db, driverID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to aggregate ratings: %w", op, err)
	}

	return ratings, agg, nil
}
