//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverProfileRepository_GetByDriverID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	repo := NewDriverProfileRepository(testDB, logger)
	ctx := context.Background()

	mean := 4.25
	ref := "uploads/usuarios/7/profile_1.png"
	seedProfile(t, testDB, 7, 4, &mean, &ref)

	profile, err := repo.GetByDriverID(ctx, testDB, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), profile.DriverID)
	assert.Equal(t, 4, profile.RatingCount)
	require.NotNil(t, profile.RatingMean)
	assert.InDelta(t, 4.25, *profile.RatingMean, 0.001)
	require.NotNil(t, profile.PhotoReference)
	assert.Equal(t, ref, *profile.PhotoReference)
	assert.Equal(t, int64(1), profile.Version)

	_, err = repo.GetByDriverID(ctx, testDB, 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDriverProfileRepository_Listing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	repo := NewDriverProfileRepository(testDB, logger)
	ctx := context.Background()

	seedProfile(t, testDB, 3, 0, nil, nil)
	seedProfile(t, testDB, 1, 0, nil, nil)
	seedProfile(t, testDB, 2, 0, nil, nil)

	ids, err := repo.ListDriverIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	profiles, err := repo.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, int64(1), profiles[0].DriverID)
	assert.Nil(t, profiles[0].RatingMean)
}

func TestDriverProfileRepository_UpdateRatingAggregate_VersionGuard(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	repo := NewDriverProfileRepository(testDB, logger)
	ctx := context.Background()

	seedProfile(t, testDB, 7, 0, nil, nil)

	mean := 4.50
	applied, err := repo.UpdateRatingAggregate(ctx, testDB, 7, 1, 2, &mean)
	require.NoError(t, err)
	assert.True(t, applied)

	profile, err := repo.GetByDriverID(ctx, testDB, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.RatingCount)
	require.NotNil(t, profile.RatingMean)
	assert.InDelta(t, 4.50, *profile.RatingMean, 0.001)
	assert.Equal(t, int64(2), profile.Version)

	// A write carrying the stale version must not land.
	staleMean := 1.00
	applied, err = repo.UpdateRatingAggregate(ctx, testDB, 7, 1, 99, &staleMean)
	require.NoError(t, err)
	assert.False(t, applied)

	profile, err = repo.GetByDriverID(ctx, testDB, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.RatingCount)
	assert.InDelta(t, 4.50, *profile.RatingMean, 0.001)
}

func TestDriverProfileRepository_SetPhotoReferenceIfNull(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	truncateTables(t, testDB)
	repo := NewDriverProfileRepository(testDB, logger)
	ctx := context.Background()

	seedProfile(t, testDB, 7, 0, nil, nil)

	applied, err := repo.SetPhotoReferenceIfNull(ctx, testDB, 7, "uploads/usuarios/7/profile_1.png")
	require.NoError(t, err)
	assert.True(t, applied)

	profile, err := repo.GetByDriverID(ctx, testDB, 7)
	require.NoError(t, err)
	require.NotNil(t, profile.PhotoReference)
	assert.Equal(t, "uploads/usuarios/7/profile_1.png", *profile.PhotoReference)
	assert.Equal(t, int64(2), profile.Version)

	// Once the field is non-null the update is a no-op, never an overwrite.
	applied, err = repo.SetPhotoReferenceIfNull(ctx, testDB, 7, "uploads/usuarios/7/profile_2.png")
	require.NoError(t, err)
	assert.False(t, applied)

	profile, err = repo.GetByDriverID(ctx, testDB, 7)
	require.NoError(t, err)
	assert.Equal(t, "uploads/usuarios/7/profile_1.png", *profile.PhotoReference)
}
