package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/movira/ride-consistency-service/internal/apperrors"
	"github.com/movira/ride-consistency-service/internal/domain"
)

type AssignmentRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewAssignmentRepository(db *sqlx.DB, log *slog.Logger) *AssignmentRepository {
	return &AssignmentRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func assignmentColumns() []string {
	return []string{"id", "request_id", "driver_id", "status", "created_at"}
}

// ActiveByRequestID filters on the canonical active constant only. Rows
// whose status is merely spelled differently, or represents another
// lifecycle stage, must not match.
func (r *AssignmentRepository) ActiveByRequestID(ctx context.Context, requestID int64) ([]domain.Assignment, error) {
	const op = "internal.repository.postgres.AssignmentRepository.ActiveByRequestID"

	query, args, err := r.sq.Select(assignmentColumns()...).
		From("assignments").
		Where(sq.Eq{"request_id": requestID, "status": domain.AssignmentActive}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var assignments []domain.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	return assignments, nil
}

func (r *AssignmentRepository) LatestByRequestID(ctx context.Context, requestID int64) (*domain.Assignment, error) {
	const op = "internal.repository.postgres.AssignmentRepository.LatestByRequestID"

	return r.latest(ctx, op, sq.Eq{"request_id": requestID})
}

func (r *AssignmentRepository) LatestByDriverID(ctx context.Context, driverID int64) (*domain.Assignment, error) {
	const op = "internal.repository.postgres.AssignmentRepository.LatestByDriverID"

	return r.latest(ctx, op, sq.Eq{"driver_id": driverID})
}

func (r *AssignmentRepository) latest(ctx context.Context, op string, pred sq.Eq) (*domain.Assignment, error) {
	query, args, err := r.sq.Select(assignmentColumns()...).
		From("assignments").
		Where(pred).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var assignment domain.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: no assignments match %v", op, apperrors.ErrNotFound, pred)
		}

		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	// A stored status outside the enumerated set is corrupt data, not a
	// row to hand to callers.
	if _, err := domain.ParseAssignmentStatus(string(assignment.Status)); err != nil {
		return nil, fmt.Errorf("%s: assignment %d: %w", op, assignment.ID, err)
	}

	return &assignment, nil
}
