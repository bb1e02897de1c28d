package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legalease/internal/models"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `
	lawyer_id, full_name, phone_number, license_number, years_of_experience,
	working_location, min_price, COALESCE(image, ''::bytea), image_mime, created_at, updated_at
`

func (r *ProfileRepository) Create(ctx context.Context, profile models.LawyerProfile) error {
	const query = `
		INSERT INTO lawyer_profiles (
			lawyer_id, full_name, phone_number, license_number, years_of_experience,
			working_location, min_price, image, image_mime, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10
		)
	`

	_, err := r.pool.Exec(ctx, query,
		profile.LawyerID,
		profile.FullName,
		profile.PhoneNumber,
		profile.LicenseNumber,
		profile.YearsOfExperience,
		profile.WorkingLocation,
		profile.MinPrice,
		nullableBytes(profile.Image),
		profile.ImageMime,
		profile.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrProfileExists
	}
	return err
}

// GetByLawyer returns ErrProfileNotFound when the lawyer has not created one.
func (r *ProfileRepository) GetByLawyer(ctx context.Context, lawyerID string) (models.LawyerProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM lawyer_profiles WHERE lawyer_id = $1`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, lawyerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.LawyerProfile{}, ErrProfileNotFound
	}
	return profile, err
}

// List returns every stored profile, oldest first. Completeness filtering is
// left to the caller.
func (r *ProfileRepository) List(ctx context.Context) ([]models.LawyerProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM lawyer_profiles ORDER BY created_at ASC, lawyer_id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.LawyerProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (models.LawyerProfile, error) {
	var profile models.LawyerProfile
	err := row.Scan(
		&profile.LawyerID,
		&profile.FullName,
		&profile.PhoneNumber,
		&profile.LicenseNumber,
		&profile.YearsOfExperience,
		&profile.WorkingLocation,
		&profile.MinPrice,
		&profile.Image,
		&profile.ImageMime,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	return profile, err
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
