//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingRepository_GetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	repo := NewRatingRepository(testDB, logger)
	ctx := context.Background()

	requestID := seedRequest(t, testDB, 100, "completed")
	ratingID := seedRating(t, testDB, requestID, 7, 5)

	rating, err := repo.GetByID(ctx, ratingID)
	require.NoError(t, err)
	assert.Equal(t, ratingID, rating.ID)
	assert.Equal(t, requestID, rating.RequestID)
	assert.Equal(t, int64(7), rating.DriverID)
	assert.Equal(t, 5, rating.Value)

	_, err = repo.GetByID(ctx, ratingID+1000)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRatingRepository_AggregateByDriverID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	repo := NewRatingRepository(testDB, logger)
	ctx := context.Background()

	requestID := seedRequest(t, testDB, 100, "completed")
	seedRating(t, testDB, requestID, 7, 5)
	seedRating(t, testDB, requestID, 7, 3)
	seedRating(t, testDB, requestID, 7, 4)
	// Another driver's rating must not leak into the aggregate.
	seedRating(t, testDB, requestID, 8, 1)

	agg, err := repo.AggregateByDriverID(ctx, testDB, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, agg.Count)
	require.NotNil(t, agg.Mean)
	assert.InDelta(t, 4.00, *agg.Mean, 0.001)
}

func TestRatingRepository_AggregateByDriverID_FullPrecision(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	repo := NewRatingRepository(testDB, logger)
	ctx := context.Background()

	// 16/7 has no finite decimal form. The recompute must hand back the
	// full float value, not one pre-rounded to two decimals.
	requestID := seedRequest(t, testDB, 100, "completed")
	for _, value := range []int{2, 2, 2, 2, 3, 3, 2} {
		seedRating(t, testDB, requestID, 7, value)
	}

	agg, err := repo.AggregateByDriverID(ctx, testDB, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, agg.Count)
	require.NotNil(t, agg.Mean)
	assert.InDelta(t, 16.0/7.0, *agg.Mean, 1e-9)
}

func TestRatingRepository_AggregateByDriverID_NoRatings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	repo := NewRatingRepository(testDB, logger)
	ctx := context.Background()

	agg, err := repo.AggregateByDriverID(ctx, testDB, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, agg.Count)
	assert.Nil(t, agg.Mean)
}

func TestRatingRepository_ListByDriverID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	repo := NewRatingRepository(testDB, logger)
	ctx := context.Background()

	requestID := seedRequest(t, testDB, 100, "completed")
	first := seedRating(t, testDB, requestID, 7, 5)
	second := seedRating(t, testDB, requestID, 7, 3)

	ratings, err := repo.ListByDriverID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, ratings, 2)
	assert.Equal(t, first, ratings[0].ID)
	assert.Equal(t, second, ratings[1].ID)
}
