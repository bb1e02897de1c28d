package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legalease/internal/models"
)

type ClientRepository struct {
	pool *pgxpool.Pool
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func (r *ClientRepository) Create(ctx context.Context, client models.Client) error {
	const query = `
		INSERT INTO clients (
			id, email, password_hash, first_name, middle_name, last_name, phone_number, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := r.pool.Exec(ctx, query,
		client.ID,
		client.Email,
		client.PasswordHash,
		client.Name.First,
		client.Name.Middle,
		client.Name.Last,
		client.PhoneNumber,
		client.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (models.Client, error) {
	const query = `
		SELECT id, email, password_hash, first_name, middle_name, last_name, phone_number, created_at
		FROM clients WHERE lower(email) = lower($1)
	`
	return scanClient(r.pool.QueryRow(ctx, query, email))
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (models.Client, error) {
	const query = `
		SELECT id, email, password_hash, first_name, middle_name, last_name, phone_number, created_at
		FROM clients WHERE id = $1
	`
	return scanClient(r.pool.QueryRow(ctx, query, id))
}

func scanClient(row pgx.Row) (models.Client, error) {
	var client models.Client
	if err := row.Scan(
		&client.ID,
		&client.Email,
		&client.PasswordHash,
		&client.Name.First,
		&client.Name.Middle,
		&client.Name.Last,
		&client.PhoneNumber,
		&client.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Client{}, ErrClientNotFound
		}
		return models.Client{}, err
	}
	return client, nil
}
