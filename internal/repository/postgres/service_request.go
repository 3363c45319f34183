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

type ServiceRequestRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewServiceRequestRepository(db *sqlx.DB, log *slog.Logger) *ServiceRequestRepository {
	return &ServiceRequestRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ServiceRequestRepository) GetByID(ctx context.Context, requestID int64) (*domain.ServiceRequest, error) {
	const op = "internal.repository.postgres.ServiceRequestRepository.GetByID"

	query, args, err := r.sq.Select("id", "passenger_id", "status", "created_at").
		From("service_requests").
		Where(sq.Eq{"id": requestID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var req domain.ServiceRequest
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: service request with id %d", op, apperrors.ErrNotFound, requestID)
		}

		return nil, fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
	}

	if _, err := domain.ParseRequestStatus(string(req.Status)); err != nil {
		return nil, fmt.Errorf("%s: service request %d: %w", op, req.ID, err)
	}

	return &req, nil
}
