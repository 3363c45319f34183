package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/movira/ride-consistency-service/internal/domain"
	"github.com/movira/ride-consistency-service/internal/repository"
)

// AssignmentService is the authoritative lookup contract for "the driver
// currently serving a request".
type AssignmentService interface {
	// ActiveAssignmentFor returns the single assignment holding the
	// canonical active status for the request. It returns
	// apperrors.ErrNotFound when no such row exists — "no driver
	// currently serving" is an expected outcome, not a failure — and an
	// apperrors.ActiveAssignmentInvariantError when more than one row
	// claims to be active. It never falls back to looser matching.
	ActiveAssignmentFor(ctx context.Context, requestID int64) (*domain.Assignment, error)

	// LatestAssignmentFor returns the newest assignment for the request
	// regardless of status. This is the explicit loose-semantics lookup:
	// "a driver was once assigned" must never be mistaken for "a driver
	// is serving this request now".
	LatestAssignmentFor(ctx context.Context, requestID int64) (*domain.Assignment, error)

	// LatestAssignmentForDriver returns the driver's newest assignment
	// regardless of status, for per-driver inspection.
	LatestAssignmentForDriver(ctx context.Context, driverID int64) (*domain.Assignment, error)
}

type AssignmentServiceImpl struct {
	log         *slog.Logger
	assignments repository.AssignmentRepository
}

func NewAssignmentService(log *slog.Logger, assignments repository.AssignmentRepository) *AssignmentServiceImpl {
	return &AssignmentServiceImpl{
		log:         log,
		assignments: assignments,
	}
}

func (s *AssignmentServiceImpl) ActiveAssignmentFor(ctx context.Context, requestID int64) (*domain.Assignment, error) {
	const op = "internal.service.resolver.ActiveAssignmentFor"

	active, err := s.assignments.ActiveByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query active assignments: %w", op, err)
	}

	switch len(active) {
	case 0:
		return nil, fmt.Errorf("%s: %w: no active assignment for request %d", op, apperrors.ErrNotFound, requestID)
	case 1:
		return &active[0], nil
	}

	// Upstream writers are supposed to demote the previous active row
	// before promoting a new one. Surface the corruption, never pick one.
	s.log.Error("active assignment invariant violated",
		slog.String("op", op),
		slog.Int64("request_id", requestID),
		slog.Int("active_count", len(active)),
	)

	return nil, fmt.Errorf("%s: %w", op, &apperrors.ActiveAssignmentInvariantError{
		RequestID:   requestID,
		ActiveCount: len(active),
	})
}

func (s *AssignmentServiceImpl) LatestAssignmentFor(ctx context.Context, requestID int64) (*domain.Assignment, error) {
	const op = "internal.service.resolver.LatestAssignmentFor"

	assignment, err := s.assignments.LatestByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query latest assignment: %w", op, err)
	}

	return assignment, nil
}

func (s *AssignmentServiceImpl) LatestAssignmentForDriver(ctx context.Context, driverID int64) (*domain.Assignment, error) {
	const op = "internal.service.resolver.LatestAssignmentForDriver"

	assignment, err := s.assignments.LatestByDriverID(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query latest assignment for driver: %w", op, err)
	}

	return assignment, nil
}
