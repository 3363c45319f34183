package http

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/movira/ride-consistency-service/internal/domain"
	"github.com/movira/ride-consistency-service/internal/repository"
	"github.com/movira/ride-consistency-service/internal/service"
	"github.com/stretchr/testify/mock"
)

type AssignmentServiceMock struct {
	mock.Mock
}

var _ service.AssignmentService = (*AssignmentServiceMock)(nil)

func (m *AssignmentServiceMock) ActiveAssignmentFor(ctx context.Context, requestID int64) (*domain.Assignment, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *AssignmentServiceMock) LatestAssignmentFor(ctx context.Context, requestID int64) (*domain.Assignment, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

func (m *AssignmentServiceMock) LatestAssignmentForDriver(ctx context.Context, driverID int64) (*domain.Assignment, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).(*domain.Assignment), args.Error(1)
}

type RatingServiceMock struct {
	mock.Mock
}

var _ service.RatingService = (*RatingServiceMock)(nil)

func (m *RatingServiceMock) RecordRating(ctx context.Context, ratingID int64) (*domain.DriverProfile, error) {
	args := m.Called(ctx, ratingID)
	return args.Get(0).(*domain.DriverProfile), args.Error(1)
}

func (m *RatingServiceMock) RecomputeFromSource(ctx context.Context, driverID int64) (*domain.RatingAggregate, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).(*domain.RatingAggregate), args.Error(1)
}

func (m *RatingServiceMock) RatingsForDriver(ctx context.Context, driverID int64) ([]domain.Rating, *domain.RatingAggregate, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).([]domain.Rating), args.Get(1).(*domain.RatingAggregate), args.Error(2)
}

type ReconcileServiceMock struct {
	mock.Mock
}

var _ service.ReconcileService = (*ReconcileServiceMock)(nil)

func (m *ReconcileServiceMock) RunPass(ctx context.Context, driverIDs []int64) (*domain.Report, error) {
	args := m.Called(ctx, driverIDs)
	return args.Get(0).(*domain.Report), args.Error(1)
}

type ServiceRequestRepositoryMock struct {
	mock.Mock
}

var _ repository.ServiceRequestRepository = (*ServiceRequestRepositoryMock)(nil)

func (m *ServiceRequestRepositoryMock) GetByID(ctx context.Context, requestID int64) (*domain.ServiceRequest, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(*domain.ServiceRequest), args.Error(1)
}

type DriverProfileRepositoryMock struct {
	mock.Mock
}

var _ repository.DriverProfileRepository = (*DriverProfileRepositoryMock)(nil)

func (m *DriverProfileRepositoryMock) GetByDriverID(ctx context.Context, ext sqlx.ExtContext, driverID int64) (*domain.DriverProfile, error) {
	args := m.Called(ctx, ext, driverID)
	return args.Get(0).(*domain.DriverProfile), args.Error(1)
}

func (m *DriverProfileRepositoryMock) ListDriverIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *DriverProfileRepositoryMock) ListProfiles(ctx context.Context) ([]domain.DriverProfile, error) {
	args := m.Called(ctx)
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
