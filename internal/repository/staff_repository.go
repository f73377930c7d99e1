package repository

import (
	"context"

	"claims-service/internal/models"
	"claims-service/internal/retry"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StaffRepository struct {
	db      *pgxpool.Pool
	getter  *trmpgx.CtxGetter
	psql    sq.StatementBuilderType
	retrier retry.Retrier
}

func NewStaffRepository(db *pgxpool.Pool, c *trmpgx.CtxGetter, r retry.Retrier) *StaffRepository {
	return &StaffRepository{
		db:      db,
		getter:  c,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		retrier: r,
	}
}

func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	query := r.psql.Select(
		"id", "name", "role_label", "avatar_url", "is_active",
	).From("staff").
		Where(sq.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)
	s := &models.Staff{}

	err = r.retrier.Do(ctx, func() error {
		return conn.QueryRow(ctx, sql, args...).
			Scan(&s.ID, &s.Name, &s.RoleLabel, &s.AvatarURL, &s.IsActive)
	})
	if err != nil {
		return nil, wrapDBError(err)
	}

	return s, nil
}

func (r *StaffRepository) List(ctx context.Context) ([]*models.Staff, error) {
	query := r.psql.Select(
		"id", "name", "role_label", "avatar_url", "is_active",
	).From("staff").
		Where(sq.Eq{"is_active": true}).
		OrderBy("name")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)
	staff := make([]*models.Staff, 0)

	err = r.retrier.Do(ctx, func() error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		s := &models.Staff{}
		for rows.Next() {
			if err := rows.Scan(
				&s.ID, &s.Name, &s.RoleLabel, &s.AvatarURL, &s.IsActive,
			); err != nil {
				return err
			}

			staff = append(staff, s)
			s = &models.Staff{}
		}

		return rows.Err()
	})

	return staff, wrapDBError(err)
}

func (r *StaffRepository) Create(ctx context.Context, s *models.Staff) error {
	query := r.psql.Insert("staff").
		Columns("name", "role_label", "avatar_url", "is_active").
		Values(s.Name, s.RoleLabel, s.AvatarURL, s.IsActive).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)

	err = r.retrier.Do(ctx, func() error {
		return conn.QueryRow(ctx, sql, args...).Scan(&s.ID)
	})

	return wrapDBError(err)
}
