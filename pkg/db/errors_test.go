package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationPostgres(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	wrapped := fmt.Errorf("create user: %w", pgErr)

	if !IsUniqueViolation(wrapped, "") {
		t.Fatal("expected generic match")
	}
	if !IsUniqueViolation(wrapped, "users_email_key") {
		t.Fatal("expected scoped match")
	}
	if IsUniqueViolation(wrapped, "users_username_key") {
		t.Fatal("expected no match for other constraint")
	}

	other := &pgconn.PgError{Code: "23503"}
	if IsUniqueViolation(other, "") {
		t.Fatal("foreign key violation is not a unique violation")
	}
}

func TestIsUniqueViolationMessageFallback(t *testing.T) {
	pg := errors.New(`duplicate key value violates unique constraint "users_username_key"`)
	if !IsUniqueViolation(pg, "users_username_key") {
		t.Fatal("expected match on constraint name in message")
	}
	if IsUniqueViolation(pg, "users_email_key") {
		t.Fatal("expected no match for other constraint")
	}

	lite := errors.New("UNIQUE constraint failed: users.email")
	if !IsUniqueViolation(lite, "users_email_key") {
		t.Fatal("expected sqlite column match")
	}
	if IsUniqueViolation(lite, "users_username_key") {
		t.Fatal("expected no sqlite match for other column")
	}

	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error must not match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not match")
	}
}
