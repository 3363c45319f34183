package domain

import (
	"time"
)

// ServiceRequest is a passenger's ride request. Owned by the request
// lifecycle subsystem; this service only reads it.
type ServiceRequest struct {
	ID          int64         `db:"id"`
	PassengerID int64         `db:"passenger_id"`
	Status      RequestStatus `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
}

// Assignment links a driver to a service request. A request may accumulate
// several assignment rows over time (reassignment, retries), but at most
// one of them may hold StatusActive at any instant.
type Assignment struct {
	ID        int64            `db:"id"`
	RequestID int64            `db:"request_id"`
	DriverID  int64            `db:"driver_id"`
	Status    AssignmentStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
}

// Rating is a passenger's rating of a driver for one completed request.
// Rows are immutable once created; they are never edited or deleted.
type Rating struct {
	ID        int64     `db:"id"`
	RequestID int64     `db:"request_id"`
	DriverID  int64     `db:"driver_id"`
	Value     int       `db:"value"`
	CreatedAt time.Time `db:"created_at"`
}

// Rating values are constrained to a closed interval, enforced through
// the shared validation rules.
const (
	RatingMin = 1
	RatingMax = 5
)

// DriverProfile carries the derived fields maintained by this service.
// RatingCount and RatingMean are functions of the driver's rating rows;
// PhotoReference is a function of the driver's uploaded files. Version
// guards every derived-field write (optimistic concurrency).
type DriverProfile struct {
	DriverID       int64     `db:"driver_id"`
	RatingCount    int       `db:"rating_count"`
	RatingMean     *float64  `db:"rating_mean"`
	PhotoReference *string   `db:"photo_reference"`
	Version        int64     `db:"version"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// RatingAggregate is the authoritative count and mean computed directly
// from a driver's rating rows. Mean is nil when Count is zero.
type RatingAggregate struct {
	Count int      `db:"count"`
	Mean  *float64 `db:"mean"`
}
