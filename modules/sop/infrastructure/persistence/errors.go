package persistence

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fieldops/sopdesk/pkg/serrors"
)

func classifyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return serrors.Conflict("ALREADY_EXISTS", "a record with the same value already exists")
	case pgerrcode.ForeignKeyViolation:
		return serrors.Validation("INVALID_REFERENCE", "referenced record does not exist")
	default:
		return err
	}
}
