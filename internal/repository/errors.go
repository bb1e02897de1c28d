package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrClientNotFound  = errors.New("client not found")
	ErrLawyerNotFound  = errors.New("lawyer not found")
	ErrProfileNotFound = errors.New("lawyer profile not found")
	ErrCaseNotFound    = errors.New("case not found")
	ErrSessionNotFound = errors.New("session not found")

	ErrEmailTaken    = errors.New("email already registered")
	ErrProfileExists = errors.New("lawyer profile already exists")
	// ErrStatusConflict means the row was not in the expected prior status.
	ErrStatusConflict = errors.New("case status changed concurrently")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
