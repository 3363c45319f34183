// package repository defines the interfaces for the data persistence layer.
// These interfaces abstract the underlying database implementation from the service layer.
package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/movira/ride-consistency-service/internal/domain"
)

// ServiceRequestRepository defines read-only access to service requests,
// which are owned by the request lifecycle subsystem.
type ServiceRequestRepository interface {
	// GetByID retrieves a single service request.
	// It returns apperrors.ErrNotFound if no such request exists.
	GetByID(ctx context.Context, requestID int64) (*domain.ServiceRequest, error)
}

// AssignmentRepository defines read access to driver assignments.
type AssignmentRepository interface {
	// ActiveByRequestID returns every assignment row for the request whose
	// status equals the canonical active constant. The caller enforces the
	// at-most-one invariant; this method just reports what is stored.
	ActiveByRequestID(ctx context.Context, requestID int64) ([]domain.Assignment, error)

	// LatestByRequestID returns the newest assignment row for the request
	// regardless of status.
	// It returns apperrors.ErrNotFound if the request has no assignments.
	LatestByRequestID(ctx context.Context, requestID int64) (*domain.Assignment, error)

	// LatestByDriverID returns the newest assignment row for the driver
	// regardless of status.
	// It returns apperrors.ErrNotFound if the driver has no assignments.
	LatestByDriverID(ctx context.Context, driverID int64) (*domain.Assignment, error)
}

// RatingRepository defines read access to immutable rating rows.
type RatingRepository interface {
	// GetByID retrieves a single rating row.
	// It returns apperrors.ErrNotFound if no such rating exists.
	GetByID(ctx context.Context, ratingID int64) (*domain.Rating, error)

	// ListByDriverID returns every rating row for the driver, ordered by
	// creation time.
	ListByDriverID(ctx context.Context, driverID int64) ([]domain.Rating, error)

	// AggregateByDriverID computes the authoritative count and mean over
	// the driver's rating rows with a single aggregate query.
	// The ext argument allows this method to be executed within a
	// transaction (*sqlx.Tx) or directly on a DB connection (*sqlx.DB).
	AggregateByDriverID(ctx context.Context, ext sqlx.ExtContext, driverID int64) (*domain.RatingAggregate, error)
}

// DriverProfileRepository defines access to driver profiles and their
// derived fields. All writes are conditional: they carry the pre-read
// state and apply only if the row has not changed since.
type DriverProfileRepository interface {
	// GetByDriverID retrieves a driver's profile.
	// The ext argument allows execution within a transaction or directly
	// on a DB connection.
	// It returns apperrors.ErrNotFound if the profile does not exist.
	GetByDriverID(ctx context.Context, ext sqlx.ExtContext, driverID int64) (*domain.DriverProfile, error)

	// ListDriverIDs returns the identity of every driver that has a
	// profile row, for whole-fleet reconciliation passes.
	ListDriverIDs(ctx context.Context) ([]int64, error)

	// ListProfiles returns every driver profile with its stored derived
	// fields, for reporting.
	ListProfiles(ctx context.Context) ([]domain.DriverProfile, error)

	// UpdateRatingAggregate conditionally writes a new rating count and
	// mean, guarded by the version observed at read time. It reports
	// whether the write applied; false means a concurrent writer got
	// there first and the caller must re-read before retrying.
	UpdateRatingAggregate(ctx context.Context, ext sqlx.ExtContext, driverID int64, version int64, count int, mean *float64) (bool, error)

	// SetPhotoReferenceIfNull writes the photo reference only if the
	// stored field is still null, so a concurrent upload-completion write
	// is never overwritten. It reports whether the write applied.
	SetPhotoReferenceIfNull(ctx context.Context, ext sqlx.ExtContext, driverID int64, ref string) (bool, error)
}
