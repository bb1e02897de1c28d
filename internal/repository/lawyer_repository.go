package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legalease/internal/models"
)

type LawyerRepository struct {
	pool *pgxpool.Pool
}

func NewLawyerRepository(pool *pgxpool.Pool) *LawyerRepository {
	return &LawyerRepository{pool: pool}
}

func (r *LawyerRepository) Create(ctx context.Context, lawyer models.Lawyer) error {
	const query = `
		INSERT INTO lawyers (
			id, email, password_hash, first_name, middle_name, last_name, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := r.pool.Exec(ctx, query,
		lawyer.ID,
		lawyer.Email,
		lawyer.PasswordHash,
		lawyer.Name.First,
		lawyer.Name.Middle,
		lawyer.Name.Last,
		lawyer.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *LawyerRepository) FindByEmail(ctx context.Context, email string) (models.Lawyer, error) {
	const query = `
		SELECT id, email, password_hash, first_name, middle_name, last_name, created_at
		FROM lawyers WHERE lower(email) = lower($1)
	`
	return scanLawyer(r.pool.QueryRow(ctx, query, email))
}

func (r *LawyerRepository) GetByID(ctx context.Context, id string) (models.Lawyer, error) {
	const query = `
		SELECT id, email, password_hash, first_name, middle_name, last_name, created_at
		FROM lawyers WHERE id = $1
	`
	return scanLawyer(r.pool.QueryRow(ctx, query, id))
}

func scanLawyer(row pgx.Row) (models.Lawyer, error) {
	var lawyer models.Lawyer
	if err := row.Scan(
		&lawyer.ID,
		&lawyer.Email,
		&lawyer.PasswordHash,
		&lawyer.Name.First,
		&lawyer.Name.Middle,
		&lawyer.Name.Last,
		&lawyer.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Lawyer{}, ErrLawyerNotFound
		}
		return models.Lawyer{}, err
	}
	return lawyer, nil
}
