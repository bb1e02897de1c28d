package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"legalease/internal/models"
)

type CaseRepository struct {
	pool *pgxpool.Pool
}

func NewCaseRepository(pool *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{pool: pool}
}

const caseColumns = `
	id, client_id, lawyer_id, title, description, case_type, status,
	attachment_key, attachment_mime, attachment_size, attachment_checksum, attachment_signature,
	appointment_ref, appointment_at, created_at, updated_at
`

func (r *CaseRepository) Create(ctx context.Context, c models.Case) error {
	const query = `
		INSERT INTO cases (
			id, client_id, lawyer_id, title, description, case_type, status,
			attachment_key, attachment_mime, attachment_size, attachment_checksum, attachment_signature,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13
		)
	`

	var (
		key       *string
		mime      string
		size      int64
		checksum  []byte
		signature []byte
	)
	if a := c.Attachment; a != nil {
		key = &a.ObjectKey
		mime = a.Mime
		size = a.SizeBytes
		checksum = a.Checksum
		signature = a.Signature
	}

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.ClientID,
		c.LawyerID,
		c.Title,
		c.Description,
		c.CaseType,
		c.Status,
		key,
		mime,
		size,
		checksum,
		signature,
		c.CreatedAt,
	)
	return err
}

func (r *CaseRepository) GetByID(ctx context.Context, id string) (models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`

	c, err := scanCase(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Case{}, ErrCaseNotFound
	}
	return c, err
}

func (r *CaseRepository) ListByClient(ctx context.Context, clientID string) ([]models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE client_id = $1 ORDER BY seq ASC`
	return r.list(ctx, query, clientID)
}

func (r *CaseRepository) ListByLawyer(ctx context.Context, lawyerID string) ([]models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE lawyer_id = $1 ORDER BY seq ASC`
	return r.list(ctx, query, lawyerID)
}

func (r *CaseRepository) list(ctx context.Context, query string, args ...any) ([]models.Case, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := make([]models.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func (r *CaseRepository) StatsByLawyer(ctx context.Context, lawyerID string) (models.CaseStats, error) {
	const query = `
		SELECT COUNT(*), COUNT(DISTINCT client_id)
		FROM cases WHERE lawyer_id = $1
	`
	var stats models.CaseStats
	if err := r.pool.QueryRow(ctx, query, lawyerID).Scan(&stats.Cases, &stats.Clients); err != nil {
		return models.CaseStats{}, err
	}
	return stats, nil
}

// UpdateStatus moves a case from one status to another only if it is still
// in the expected prior status.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id string, from, to models.CaseStatus, at time.Time) error {
	const query = `
		UPDATE cases SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, from, to, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

// SetAppointment records an appointment on a case that has not reached a
// terminal status.
func (r *CaseRepository) SetAppointment(ctx context.Context, id string, appointment models.Appointment, at time.Time) error {
	const query = `
		UPDATE cases SET appointment_ref = $2, appointment_at = $3, updated_at = $4
		WHERE id = $1 AND status IN ('Pending', 'In Progress')
	`
	cmd, err := r.pool.Exec(ctx, query, id, appointment.Reference, appointment.At, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStatusConflict
	}
	return nil
}

func scanCase(row pgx.Row) (models.Case, error) {
	var (
		c              models.Case
		attachmentKey  *string
		attachment     models.Attachment
		appointmentRef *string
		appointmentAt  *time.Time
	)
	if err := row.Scan(
		&c.ID,
		&c.ClientID,
		&c.LawyerID,
		&c.Title,
		&c.Description,
		&c.CaseType,
		&c.Status,
		&attachmentKey,
		&attachment.Mime,
		&attachment.SizeBytes,
		&attachment.Checksum,
		&attachment.Signature,
		&appointmentRef,
		&appointmentAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return models.Case{}, err
	}

	if attachmentKey != nil {
		attachment.ObjectKey = *attachmentKey
		c.Attachment = &attachment
	}
	if appointmentRef != nil && appointmentAt != nil {
		c.Appointment = &models.Appointment{Reference: *appointmentRef, At: *appointmentAt}
	}
	return c, nil
}
