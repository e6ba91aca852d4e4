package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgUndefinedFunction   = "42883"
	pgNumericOutOfRange   = "22003"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

// rangeError tags numeric and integer overflows with ErrValueOutOfRange.
func rangeError(err error) error {
	if pgErrorCode(err) == pgNumericOutOfRange {
		return fmt.Errorf("%w: %w", ErrValueOutOfRange, err)
	}

	return err
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	res := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse uuid %q: %w", s, err)
		}
		res = append(res, id)
	}

	return res, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	res := make([]string, len(ids))
	for i, id := range ids {
		res[i] = id.String()
	}

	return res
}
