package http

import (
	"math"
	"time"

	"github.com/movira/ride-consistency-service/internal/domain"
)

// roundedMean rounds a stored mean to two decimals for presentation.
// The store keeps full precision.
func roundedMean(mean *float64) *float64 {
	if mean == nil {
		return nil
	}

	r := math.Round(*mean*100) / 100

	return &r
}

type recordRatingRequest struct {
	RatingID int64 `json:"rating_id" validate:"required,gt=0"`
}

type reconcileRequest struct {
	// Empty means every driver with a profile.
	DriverIDs []int64 `json:"driver_ids" validate:"omitempty,dive,gt=0"`
}

type assignmentResponse struct {
	ID        int64     `json:"id"`
	RequestID int64     `json:"request_id"`
	DriverID  int64     `json:"driver_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toAssignmentResponse(a *domain.Assignment) *assignmentResponse {
	return &assignmentResponse{
		ID:        a.ID,
		RequestID: a.RequestID,
		DriverID:  a.DriverID,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
	}
}

type profileResponse struct {
	DriverID       int64    `json:"driver_id"`
	RatingCount    int      `json:"rating_count"`
	RatingMean     *float64 `json:"rating_mean"`
	PhotoReference *string  `json:"photo_reference"`
}

func toProfileResponse(p *domain.DriverProfile) *profileResponse {
	return &profileResponse{
		DriverID:       p.DriverID,
		RatingCount:    p.RatingCount,
		RatingMean:     roundedMean(p.RatingMean),
		PhotoReference: p.PhotoReference,
	}
}

type requestResponse struct {
	ID          int64     `json:"id"`
	PassengerID int64     `json:"passenger_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRequestResponse(r *domain.ServiceRequest) *requestResponse {
	return &requestResponse{
		ID:          r.ID,
		PassengerID: r.PassengerID,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}

type ratingResponse struct {
	ID        int64     `json:"id"`
	RequestID int64     `json:"request_id"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type aggregateResponse struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
}

type driverRatingsResponse struct {
	Ratings   []ratingResponse  `json:"ratings"`
	Aggregate aggregateResponse `json:"aggregate"`
}

func toDriverRatingsResponse(ratings []domain.Rating, agg *domain.RatingAggregate) driverRatingsResponse {
	resp := driverRatingsResponse{
		Ratings:   make([]ratingResponse, len(ratings)),
		Aggregate: aggregateResponse{Count: agg.Count, Mean: roundedMean(agg.Mean)},
	}

	for i, r := range ratings {
		resp.Ratings[i] = ratingResponse{
			ID:        r.ID,
			RequestID: r.RequestID,
			Value:     r.Value,
			CreatedAt: r.CreatedAt,
		}
	}

	return resp
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}
