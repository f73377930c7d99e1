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

type CommentRepository struct {
	db      *pgxpool.Pool
	getter  *trmpgx.CtxGetter
	psql    sq.StatementBuilderType
	retrier retry.Retrier
}

func NewCommentRepository(db *pgxpool.Pool, c *trmpgx.CtxGetter, r retry.Retrier) *CommentRepository {
	return &CommentRepository{
		db:      db,
		getter:  c,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		retrier: r,
	}
}

// ListByClaim returns the full thread of a claim with authors resolved.
// Ordering for display is the engine's job; rows come back in creation
// order.
func (r *CommentRepository) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*models.Comment, error) {
	conn := r.getter.DefaultTrOrDB(ctx, r.db)

	comments := make([]*models.Comment, 0)
	byID := make(map[uuid.UUID]*models.Comment)

	commentSQL, commentArgs, err := r.psql.Select(
		"c.id", "c.claim_id", "c.body", "c.created_at",
		"s.id", "s.name", "s.role_label", "s.avatar_url", "s.is_active",
	).From("comments c").
		Join("staff s ON s.id = c.author_id").
		Where(sq.Eq{"c.claim_id": claimID}).
		OrderBy("c.created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	replySQL, replyArgs, err := r.psql.Select(
		"r.id", "r.comment_id", "r.body", "r.created_at",
		"s.id", "s.name", "s.role_label", "s.avatar_url", "s.is_active",
	).From("replies r").
		Join("comments c ON c.id = r.comment_id").
		Join("staff s ON s.id = r.author_id").
		Where(sq.Eq{"c.claim_id": claimID}).
		OrderBy("r.created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.retrier.Do(ctx, func() error {
		rows, err := conn.Query(ctx, commentSQL, commentArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c := &models.Comment{Replies: make([]*models.Reply, 0)}
			if err := rows.Scan(
				&c.ID, &c.ClaimID, &c.Body, &c.CreatedAt,
				&c.Author.ID, &c.Author.Name, &c.Author.RoleLabel,
				&c.Author.AvatarURL, &c.Author.IsActive,
			); err != nil {
				return err
			}
			comments = append(comments, c)
			byID[c.ID] = c
		}
		if err := rows.Err(); err != nil {
			return err
		}

		replyRows, err := conn.Query(ctx, replySQL, replyArgs...)
		if err != nil {
			return err
		}
		defer replyRows.Close()

		for replyRows.Next() {
			reply := &models.Reply{}
			if err := replyRows.Scan(
				&reply.ID, &reply.CommentID, &reply.Body, &reply.CreatedAt,
				&reply.Author.ID, &reply.Author.Name, &reply.Author.RoleLabel,
				&reply.Author.AvatarURL, &reply.Author.IsActive,
			); err != nil {
				return err
			}
			if parent, ok := byID[reply.CommentID]; ok {
				parent.Replies = append(parent.Replies, reply)
			}
		}

		return replyRows.Err()
	})

	return comments, wrapDBError(err)
}

func (r *CommentRepository) CreateComment(ctx context.Context, claimID, authorID uuid.UUID, body string) (uuid.UUID, error) {
	query := r.psql.Insert("comments").
		Columns("claim_id", "author_id", "body").
		Values(claimID, authorID, body).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)
	var id uuid.UUID

	err = r.retrier.Do(ctx, func() error {
		return conn.QueryRow(ctx, sql, args...).Scan(&id)
	})

	return id, wrapDBError(err)
}

func (r *CommentRepository) CreateReply(ctx context.Context, commentID, authorID uuid.UUID, body string) (uuid.UUID, error) {
	query := r.psql.Insert("replies").
		Columns("comment_id", "author_id", "body").
		Values(commentID, authorID, body).
		Suffix("RETURNING id")

	sql, args, err := query.ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	conn := r.getter.DefaultTrOrDB(ctx, r.db)
	var id uuid.UUID

	err = r.retrier.Do(ctx, func() error {
		return conn.QueryRow(ctx, sql, args...).Scan(&id)
	})

	return id, wrapDBError(err)
}
