package repository

import (
	"context"

	"claims-service/internal/models"
	"claims-service/internal/retry"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectRepository struct {
	db      *pgxpool.Pool
	getter  *trmpgx.CtxGetter
	psql    sq.StatementBuilderType
	retrier retry.Retrier
}

func NewProjectRepository(db *pgxpool.Pool, c *trmpgx.CtxGetter, r retry.Retrier) *ProjectRepository {
	return &ProjectRepository{
		db:      db,
		getter:  c,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		retrier: r,
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query := r.psql.Insert("projects").
		Columns("name", "date_from", "date_to").
		Values(p.Name, p.DateFrom, p.DateTo).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)

	err = r.retrier.Do(ctx, func() error {
		return conn.QueryRow(ctx, sql, args...).Scan(&p.ID)
	})

	return wrapDBError(err)
}

func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	query := r.psql.Update("projects").
		Set("name", p.Name).
		Set("date_from", p.DateFrom).
		Set("date_to", p.DateTo).
		Where(sq.Eq{"id": p.ID})

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

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := r.psql.Select(
		"p.id", "p.name", "p.date_from", "p.date_to",
		"pr.staff_id", "pr.slot",
	).From("projects p").
		LeftJoin("project_roles pr ON pr.project_id = p.id").
		Where(sq.Eq{"p.id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)
	p := &models.Project{
		Roles: make([]*models.ProjectRole, 0),
	}
	found := false

	err = r.retrier.Do(ctx, func() error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var staffID *uuid.UUID
			var slot *string
			if err := rows.Scan(
				&p.ID, &p.Name, &p.DateFrom, &p.DateTo,
				&staffID, &slot,
			); err != nil {
				return err
			}
			found = true

			if staffID != nil && slot != nil {
				p.Roles = append(p.Roles, &models.ProjectRole{
					ProjectID: p.ID,
					StaffID:   *staffID,
					Slot:      *slot,
				})
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, wrapDBError(err)
	}
	if !found {
		return nil, ErrNotFound
	}

	return p, nil
}

// ReplaceRoles swaps the full role-slot table of a project. The unique
// constraint on (project_id, staff_id) backs the exclusivity invariant at
// the store.
func (r *ProjectRepository) ReplaceRoles(ctx context.Context, projectID uuid.UUID, roles []*models.ProjectRole) error {
	conn := r.getter.DefaultTrOrDB(ctx, r.db)

	err := r.retrier.Do(ctx, func() error {
		delSQL, delArgs, err := r.psql.
			Delete("project_roles").
			Where(sq.Eq{"project_id": projectID}).
			ToSql()
		if err != nil {
			return err
		}

		if _, err := conn.Exec(ctx, delSQL, delArgs...); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, role := range roles {
			sql, args, err := r.psql.
				Insert("project_roles").
				Columns("project_id", "staff_id", "slot").
				Values(projectID, role.StaffID, role.Slot).
				ToSql()
			if err != nil {
				return err
			}

			batch.Queue(sql, args...)
		}

		br := conn.SendBatch(ctx, batch)

		return br.Close()
	})

	return wrapDBError(err)
}
