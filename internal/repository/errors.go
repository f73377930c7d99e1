package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("entity not found")
	ErrDuplicate           = errors.New("entity already exists")
	ErrForeignKeyViolation = errors.New("referenced entity does not exist")
	ErrInvalidID           = errors.New("invalid id")
	ErrTxAborted           = errors.New("transaction aborted")
)

// wrapDBError maps driver errors onto the repository sentinels so callers
// can branch with errors.Is without importing pgx.
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrForeignKeyViolation
		case "22P02":
			return ErrInvalidID
		case "25P02":
			return ErrTxAborted
		}
	}

	return err
}
