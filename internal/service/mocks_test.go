package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/movira/ride-consistency-service/internal/domain"
	"github.com/movira/ride-consistency-service/internal/repository"
	"github.com/movira/ride-consistency-service/internal/uploads"
	"github.com/stretchr/testify/mock"
)

type AssignmentRepositoryMock struct {
	mock.Mock
}

var _ repository.AssignmentRepository = (*AssignmentRepositoryMock)(nil)

func (m *AssignmentRepositoryMock) ActiveByRequestID(ctx context.Context, requestID int64) ([]domain.Assignment, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Assignment), args.Error(1)
}

func (m *AssignmentRepositoryMock) LatestByRequestID(ctx context.Context, requestID int64) (*domain.Assignment, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *AssignmentRepositoryMock) LatestByDriverID(ctx context.Context, driverID int64) (*domain.Assignment, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Assignment), args.Error(1)
}

type RatingRepositoryMock struct {
	mock.Mock
}

var _ repository.RatingRepository = (*RatingRepositoryMock)(nil)

func (m *RatingRepositoryMock) GetByID(ctx context.Context, ratingID int64) (*domain.Rating, error) {
	args := m.Called(ctx, ratingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *RatingRepositoryMock) ListByDriverID(ctx context.Context, driverID int64) ([]domain.Rating, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.Rating), args.Error(1)
}

func (m *RatingRepositoryMock) AggregateByDriverID(ctx context.Context, ext sqlx.ExtContext, driverID int64) (*domain.RatingAggregate, error) {
	args := m.Called(ctx, ext, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.RatingAggregate), args.Error(1)
}

type DriverProfileRepositoryMock struct {
	mock.Mock
}

var _ repository.DriverProfileRepository = (*DriverProfileRepositoryMock)(nil)

func (m *DriverProfileRepositoryMock) GetByDriverID(ctx context.Context, ext sqlx.ExtContext, driverID int64) (*domain.DriverProfile, error) {
	args := m.Called(ctx, ext, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.DriverProfile), args.Error(1)
}

func (m *DriverProfileRepositoryMock) ListDriverIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]int64), args.Error(1)
}

func (m *DriverProfileRepositoryMock) ListProfiles(ctx context.Context) ([]domain.DriverProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]domain.DriverProfile), args.Error(1)
}

func (m *DriverProfileRepositoryMock) UpdateRatingAggregate(ctx context.Context, ext sqlx.ExtContext, driverID int64, version int64, count int, mean *float64) (bool, error) {
	args := m.Called(ctx, ext, driverID, version, count, mean)
	return args.Bool(0), args.Error(1)
}

func (m *DriverProfileRepositoryMock) SetPhotoReferenceIfNull(ctx context.Context, ext sqlx.ExtContext, driverID int64, ref string) (bool, error) {
	args := m.Called(ctx, ext, driverID, ref)
	return args.Bool(0), args.Error(1)
}

type UploadStoreMock struct {
	mock.Mock
}

var _ uploads.Store = (*UploadStoreMock)(nil)

func (m *UploadStoreMock) ListDriverFiles(ctx context.Context, driverID int64) ([]uploads.FileInfo, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]uploads.FileInfo), args.Error(1)
}

type PhotoServiceMock struct {
	mock.Mock
}

var _ PhotoService = (*PhotoServiceMock)(nil)

func (m *PhotoServiceMock) ReconcilePhoto(ctx context.Context, driverID int64) (*domain.PhotoReconciliation, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*domain.PhotoReconciliation), args.Error(1)
}

// statefulProfileRepo keeps one driver profile in memory and applies the
// same version-guarded write semantics as the real store. Tests that need
// the effect of one call visible to the next use it instead of a
// call-by-call mock.
type statefulProfileRepo struct {
	profile domain.DriverProfile
	updates int
}

var _ repository.DriverProfileRepository = (*statefulProfileRepo)(nil)

func (s *statefulProfileRepo) GetByDriverID(_ context.Context, _ sqlx.ExtContext, driverID int64) (*domain.DriverProfile, error) {
	if driverID != s.profile.DriverID {
		return nil, apperrors.ErrNotFound
	}

	p := s.profile

	return &p, nil
}

func (s *statefulProfileRepo) ListDriverIDs(_ context.Context) ([]int64, error) {
	return []int64{s.profile.DriverID}, nil
}

func (s *statefulProfileRepo) ListProfiles(_ context.Context) ([]domain.DriverProfile, error) {
	return []domain.DriverProfile{s.profile}, nil
}

func (s *statefulProfileRepo) UpdateRatingAggregate(_ context.Context, _ sqlx.ExtContext, driverID, version int64, count int, mean *float64) (bool, error) {
	if driverID != s.profile.DriverID || version != s.profile.Version {
		return false, nil
	}

	s.profile.RatingCount = count
	s.profile.RatingMean = nil
	if mean != nil {
		m := *mean
		s.profile.RatingMean = &m
	}
	s.profile.Version++
	s.updates++

	return true, nil
}

func (s *statefulProfileRepo) SetPhotoReferenceIfNull(_ context.Context, _ sqlx.ExtContext, driverID int64, ref string) (bool, error) {
	if driverID != s.profile.DriverID || s.profile.PhotoReference != nil {
		return false, nil
	}

	s.profile.PhotoReference = &ref
	s.profile.Version++

	return true, nil
}
