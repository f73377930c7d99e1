package repository

import (
	"context"
	"time"

	"claims-service/internal/models"
	"claims-service/internal/retry"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClaimRepository struct {
	db      *pgxpool.Pool
	getter  *trmpgx.CtxGetter
	psql    sq.StatementBuilderType
	retrier retry.Retrier
}

// ClaimFilter narrows List; nil fields match everything.
type ClaimFilter struct {
	ProjectID *uuid.UUID
	StaffID   *uuid.UUID
	Status    *string
}

func NewClaimRepository(db *pgxpool.Pool, c *trmpgx.CtxGetter, r retry.Retrier) *ClaimRepository {
	return &ClaimRepository{
		db:      db,
		getter:  c,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		retrier: r,
	}
}

var claimColumns = []string{
	"id", "project_id", "staff_id", "status",
	"reason_claimer", "reason_approver", "hours",
	"date_from", "date_to", "created_at", "updated_at",
}

func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) error {
	query := r.psql.Insert("claims").
		Columns(
			"id", "project_id", "staff_id", "status",
			"reason_claimer", "reason_approver", "hours",
			"date_from", "date_to", "created_at", "updated_at",
		).
		Values(
			claim.ID, claim.ProjectID, claim.StaffID, claim.Status,
			claim.ReasonClaimer, claim.ReasonApprover, claim.Hours,
			claim.DateFrom, claim.DateTo, claim.CreatedAt, claim.UpdatedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)

	err = r.retrier.Do(ctx, func() error {
		_, retryErr := conn.Exec(ctx, sql, args...)
		return retryErr
	})

	return wrapDBError(err)
}

func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	query := r.psql.Select(claimColumns...).
		From("claims").
		Where(sq.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)
	c := &models.Claim{}

	err = r.retrier.Do(ctx, func() error {
		return conn.QueryRow(ctx, sql, args...).Scan(
			&c.ID, &c.ProjectID, &c.StaffID, &c.Status,
			&c.ReasonClaimer, &c.ReasonApprover, &c.Hours,
			&c.DateFrom, &c.DateTo, &c.CreatedAt, &c.UpdatedAt,
		)
	})
	if err != nil {
		return nil, wrapDBError(err)
	}

	return c, nil
}

func (r *ClaimRepository) List(ctx context.Context, filter ClaimFilter) ([]*models.Claim, error) {
	query := r.psql.Select(claimColumns...).
		From("claims").
		OrderBy("created_at DESC")

	if filter.ProjectID != nil {
		query = query.Where(sq.Eq{"project_id": *filter.ProjectID})
	}
	if filter.StaffID != nil {
		query = query.Where(sq.Eq{"staff_id": *filter.StaffID})
	}
	if filter.Status != nil {
		query = query.Where(sq.Eq{"status": *filter.Status})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)
	claims := make([]*models.Claim, 0)

	err = r.retrier.Do(ctx, func() error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		c := &models.Claim{}
		for rows.Next() {
			if err := rows.Scan(
				&c.ID, &c.ProjectID, &c.StaffID, &c.Status,
				&c.ReasonClaimer, &c.ReasonApprover, &c.Hours,
				&c.DateFrom, &c.DateTo, &c.CreatedAt, &c.UpdatedAt,
			); err != nil {
				return err
			}
			claims = append(claims, c)
			c = &models.Claim{}
		}

		return rows.Err()
	})

	return claims, wrapDBError(err)
}

// UpdateStatus persists a workflow transition: status and approver reason
// change together or not at all.
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, reasonApprover string) error {
	query := r.psql.Update("claims").
		Set("status", status).
		Set("reason_approver", reasonApprover).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)

	err = r.retrier.Do(ctx, func() error {
		tag, retryErr := conn.Exec(ctx, sql, args...)
		if retryErr != nil {
			return retryErr
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})

	return wrapDBError(err)
}
