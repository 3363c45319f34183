// package http implements the HTTP transport layer for the service.
// It handles incoming requests, decodes them, calls the appropriate service methods,
// and encodes the responses.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/movira/ride-consistency-service/internal/repository"
	"github.com/movira/ride-consistency-service/internal/service"
	"github.com/movira/ride-consistency-service/internal/validation"
	"github.com/movira/ride-consistency-service/pkg/logger/sl"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the dependencies for the HTTP server, including the logger and service interfaces.
type Server struct {
	log         *slog.Logger
	assignments service.AssignmentService
	ratings     service.RatingService
	reconciler  service.ReconcileService
	profiles    repository.DriverProfileRepository
	requests    repository.ServiceRequestRepository
}

// NewServer creates a new instance of the HTTP server.
func NewServer(
	log *slog.Logger,
	as service.AssignmentService,
	rs service.RatingService,
	cs service.ReconcileService,
	profiles repository.DriverProfileRepository,
	requests repository.ServiceRequestRepository,
) *Server {
	return &Server{
		log:         log,
		assignments: as,
		ratings:     rs,
		reconciler:  cs,
		profiles:    profiles,
		requests:    requests,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())

	mux.Get("/requests/{requestID}", s.GetServiceRequest)
	mux.Get("/requests/{requestID}/assignment", s.GetActiveAssignment)
	mux.Get("/requests/{requestID}/assignment/latest", s.GetLatestAssignment)
	mux.Post("/ratings/record", s.PostRecordRating)
	mux.Post("/reconcile", s.PostReconcile)
	mux.Get("/drivers", s.GetDrivers)
	mux.Get("/drivers/{driverID}/assignment/latest", s.GetDriverLatestAssignment)
	mux.Get("/drivers/{driverID}/ratings", s.GetDriverRatings)

	return mux
}

// GetActiveAssignment resolves the single active assignment for a request.
// "No active assignment" is a successful answer, not an error: the body
// carries an explicit null so callers cannot mistake it for a lookup
// failure.
func (s *Server) GetActiveAssignment(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetActiveAssignment"

	requestID, err := pathID(r, "requestID")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	assignment, err := s.assignments.ActiveAssignmentFor(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.respond(w, http.StatusOK, map[string]*assignmentResponse{"assignment": nil})
			return
		}

		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*assignmentResponse{"assignment": toAssignmentResponse(assignment)})
}

func (s *Server) GetLatestAssignment(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetLatestAssignment"

	requestID, err := pathID(r, "requestID")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	assignment, err := s.assignments.LatestAssignmentFor(r.Context(), requestID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*assignmentResponse{"assignment": toAssignmentResponse(assignment)})
}

func (s *Server) PostRecordRating(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostRecordRating"

	var req recordRatingRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	profile, err := s.ratings.RecordRating(r.Context(), req.RatingID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*profileResponse{"profile": toProfileResponse(profile)})
}

func (s *Server) PostReconcile(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostReconcile"

	var req reconcileRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	report, err := s.reconciler.RunPass(r.Context(), req.DriverIDs)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, report)
}

func (s *Server) GetServiceRequest(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetServiceRequest"

	requestID, err := pathID(r, "requestID")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	req, err := s.requests.GetByID(r.Context(), requestID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*requestResponse{"request": toRequestResponse(req)})
}

func (s *Server) GetDriverLatestAssignment(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetDriverLatestAssignment"

	driverID, err := pathID(r, "driverID")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	assignment, err := s.assignments.LatestAssignmentForDriver(r.Context(), driverID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]*assignmentResponse{"assignment": toAssignmentResponse(assignment)})
}

// GetDriverRatings exposes the rating rows behind a driver's stored
// aggregate, with the recomputed count and mean for comparison.
func (s *Server) GetDriverRatings(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetDriverRatings"

	driverID, err := pathID(r, "driverID")
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	ratings, agg, err := s.ratings.RatingsForDriver(r.Context(), driverID)
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	s.respond(w, http.StatusOK, toDriverRatingsResponse(ratings, agg))
}

func (s *Server) GetDrivers(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.GetDrivers"

	profiles, err := s.profiles.ListProfiles(r.Context())
	if err != nil {
		s.handleServiceError(w, r, op, err)
		return
	}

	resp := make([]*profileResponse, len(profiles))
	for i := range profiles {
		resp[i] = toProfileResponse(&profiles[i])
	}

	s.respond(w, http.StatusOK, map[string][]*profileResponse{"drivers": resp})
}

// respond is a helper function to encode data to JSON and write it to the response.
// It centralizes setting the Content-Type header and writing the status code.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

// respondError is a convenience wrapper around respond for sending structured error messages.
func (s *Server) respondError(w http.ResponseWriter, code int, apiCode, message string) {
	s.respond(w, code, errorResponse{
		Error: errorBody{
			Code:    apiCode,
			Message: message,
		},
	})
}

// decodeAndValidate is a helper that deserializes a JSON request body into a struct
// and then runs validation checks on it.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

// decode is a helper function to decode a JSON request body.
func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// pathID parses a positive integer identifier from a chi URL parameter,
// rejecting malformed input before it reaches the store.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: '%s' is not a valid identifier", apperrors.ErrInvalidRequest, raw)
	}

	return id, nil
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
func (s *Server) handleServiceError(w http.ResponseWriter, _ *http.Request, op string, err error) {
	log := s.log.With(slog.String("op", op))
	log.Error("service error occurred", sl.Err(err))

	var validationErr *validation.ValidationError

	switch {
	case errors.As(err, &validationErr):
		s.respondError(w, http.StatusBadRequest, "VALIDATION", validationErr.Error())
	case errors.Is(err, apperrors.ErrValidation):
		s.respondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request")
	case errors.Is(err, apperrors.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, apperrors.ErrInvariantViolation):
		s.respondError(w, http.StatusConflict, "INVARIANT_VIOLATION", err.Error())
	case errors.Is(err, apperrors.ErrUnrepairableConflict):
		s.respondError(w, http.StatusConflict, "UNREPAIRABLE_CONFLICT", err.Error())
	case errors.Is(err, apperrors.ErrConcurrentWriteLost):
		s.respondError(w, http.StatusServiceUnavailable, "CONCURRENT_WRITE_LOST", "concurrent write lost, retry later")
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		s.respondError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "store unavailable, retry later")
	default:
		s.respondError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
