package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolationCode = "23505"

// IsUniqueViolation reports whether the provided error references a unique
// constraint violation. When constraintName is provided, the match is scoped
// to that constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolationCode {
			return false
		}
		if constraintName != "" {
			return pgErr.ConstraintName == constraintName
		}
		return true
	}

	// sqlite (tests) and drivers that only expose message text.
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if constraintName == "" {
		return true
	}
	if strings.Contains(msg, constraintName) {
		return true
	}
	// sqlite reports "table.column" rather than the index name.
	if column, ok := columnFromConstraint(constraintName); ok {
		return strings.Contains(msg, "."+column)
	}
	return false
}

// columnFromConstraint extracts the column from index names shaped like
// "<table>_<column>_key".
func columnFromConstraint(name string) (string, bool) {
	trimmed := strings.TrimSuffix(name, "_key")
	trimmed = strings.TrimSuffix(trimmed, "_idx")
	sep := strings.Index(trimmed, "_")
	if sep < 0 || sep+1 >= len(trimmed) {
		return "", false
	}
	return trimmed[sep+1:], true
}
