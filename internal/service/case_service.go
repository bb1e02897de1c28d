package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"legalease/internal/config"
	"legalease/internal/ids"
	"legalease/internal/media/attachment"
	"legalease/internal/metrics"
	"legalease/internal/models"
	"legalease/internal/queue"
	"legalease/internal/repository"
	"legalease/internal/security"
	"legalease/internal/storage"
)

var errAttachmentIntegrity = errors.New("attachment integrity check failed")

type CaseService struct {
	cases    CaseStore
	lawyers  LawyerStore
	profiles ProfileStore
	blobs    BlobStore
	tasks    TaskQueue
	secret   string
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
}

func NewCaseService(
	cases CaseStore,
	lawyers LawyerStore,
	profiles ProfileStore,
	blobs BlobStore,
	tasks TaskQueue,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *CaseService {
	return &CaseService{
		cases:    cases,
		lawyers:  lawyers,
		profiles: profiles,
		blobs:    blobs,
		tasks:    tasks,
		secret:   cfg.Security.AttachmentSecret,
		maxBytes: cfg.Limits.MaxAttachmentBytes,
		log:      log.With().Str("component", "cases").Logger(),
		now:      time.Now,
	}
}

type CreateCaseInput struct {
	LawyerID    string `validate:"required,notblank"`
	Title       string `validate:"required,notblank,max=200"`
	Description string `validate:"required,notblank,max=10000"`
	CaseType    string `validate:"required,notblank,max=100"`
	// Attachment is an optional data URL or bare base64 body.
	Attachment     string
	AttachmentMime string
}

type AppointmentInput struct {
	Reference string    `validate:"required,notblank,max=200"`
	At        time.Time `validate:"required"`
}

// Create files a Pending case from the calling client against a lawyer
// with a complete profile.
func (s *CaseService) Create(ctx context.Context, p models.Principal, input CreateCaseInput) (models.Case, error) {
	clientID, err := requireClient(p)
	if err != nil {
		return models.Case{}, err
	}

	input.LawyerID = strings.TrimSpace(input.LawyerID)
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.CaseType = strings.TrimSpace(input.CaseType)
	if err := validateStruct(input); err != nil {
		return models.Case{}, err
	}

	var (
		raw  []byte
		mime string
	)
	hasAttachment := strings.TrimSpace(input.Attachment) != ""
	if hasAttachment {
		raw, mime, err = attachment.Decode(input.Attachment, input.AttachmentMime)
		if err != nil {
			return models.Case{}, invalid("attachment", "must be base64 encoded")
		}
		if s.maxBytes > 0 && int64(len(raw)) > s.maxBytes {
			return models.Case{}, invalid("attachment", "is too large")
		}
	}

	if _, err := s.lawyers.GetByID(ctx, input.LawyerID); err != nil {
		if errors.Is(err, repository.ErrLawyerNotFound) {
			return models.Case{}, ErrLawyerNotFound
		}
		return models.Case{}, upstream(err)
	}
	complete, err := profileComplete(ctx, s.profiles, input.LawyerID)
	if err != nil {
		return models.Case{}, upstream(err)
	}
	if !complete {
		return models.Case{}, ErrLawyerNotFound
	}

	now := s.now().UTC()
	c := models.Case{
		ID:          ids.New(),
		ClientID:    clientID,
		LawyerID:    input.LawyerID,
		Title:       input.Title,
		Description: input.Description,
		CaseType:    input.CaseType,
		Status:      models.CaseStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if hasAttachment {
		key := storage.AttachmentKey(c.ID)
		sum := sha256.Sum256(raw)
		if err := s.blobs.Put(ctx, key, raw, mime); err != nil {
			return models.Case{}, upstream(err)
		}
		c.Attachment = &models.Attachment{
			ObjectKey: key,
			Mime:      mime,
			SizeBytes: int64(len(raw)),
			Checksum:  sum[:],
			Signature: security.SignAttachment(s.secret, c.ID, key, sum[:]),
		}
	}

	if err := s.cases.Create(ctx, c); err != nil {
		if c.Attachment != nil {
			if derr := s.blobs.Delete(ctx, c.Attachment.ObjectKey); derr != nil {
				s.log.Warn().Err(derr).Str("key", c.Attachment.ObjectKey).Msg("orphan attachment left behind")
			}
		}
		return models.Case{}, upstream(err)
	}

	metrics.CasesCreatedTotal.Inc()
	s.log.Info().
		Str("case_id", c.ID).
		Str("client_id", clientID).
		Str("lawyer_id", c.LawyerID).
		Bool("attachment", c.Attachment != nil).
		Msg("case created")
	s.enqueue(ctx, queue.Task{Type: queue.TaskCaseCreated, CaseID: c.ID, LawyerID: c.LawyerID})
	return c, nil
}

func (s *CaseService) ListForClient(ctx context.Context, p models.Principal) ([]models.Case, error) {
	clientID, err := requireClient(p)
	if err != nil {
		return nil, err
	}
	cases, err := s.cases.ListByClient(ctx, clientID)
	if err != nil {
		s.degraded("client_cases", err)
		return []models.Case{}, nil
	}
	return cases, nil
}

func (s *CaseService) ListForLawyer(ctx context.Context, p models.Principal) ([]models.Case, error) {
	lawyerID, err := requireLawyer(p)
	if err != nil {
		return nil, err
	}
	cases, err := s.cases.ListByLawyer(ctx, lawyerID)
	if err != nil {
		s.degraded("lawyer_cases", err)
		return []models.Case{}, nil
	}
	return cases, nil
}

// StatsForLawyer never fails: no cases and an unreachable store both read
// as zero.
func (s *CaseService) StatsForLawyer(ctx context.Context, lawyerID string) models.CaseStats {
	stats, err := s.cases.StatsByLawyer(ctx, lawyerID)
	if err != nil {
		s.degraded("lawyer_stats", err)
		return models.CaseStats{}
	}
	return stats
}

func (s *CaseService) Stats(ctx context.Context, p models.Principal) (models.CaseStats, error) {
	lawyerID, err := requireLawyer(p)
	if err != nil {
		return models.CaseStats{}, err
	}
	return s.StatsForLawyer(ctx, lawyerID), nil
}

// Transition moves an owned case along the status graph. A rejected call
// leaves the stored status untouched.
func (s *CaseService) Transition(ctx context.Context, p models.Principal, caseID string, target string) (models.Case, error) {
	lawyerID, err := requireLawyer(p)
	if err != nil {
		return models.Case{}, err
	}
	to, err := models.ParseCaseStatus(strings.TrimSpace(target))
	if err != nil {
		return models.Case{}, invalid("status", "must be one of Pending, In Progress, Completed, Rejected")
	}

	c, err := s.ownedByLawyer(ctx, lawyerID, caseID)
	if err != nil {
		return models.Case{}, err
	}
	from := c.Status
	if !from.CanTransition(to) {
		return models.Case{}, ErrInvalidTransition
	}

	now := s.now().UTC()
	if err := s.cases.UpdateStatus(ctx, c.ID, from, to, now); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return models.Case{}, ErrInvalidTransition
		}
		return models.Case{}, upstream(err)
	}
	c.Status = to
	c.UpdatedAt = now

	metrics.CaseTransitionsTotal.WithLabelValues(string(to)).Inc()
	s.log.Info().Str("case_id", c.ID).Str("from", string(from)).Str("to", string(to)).Msg("case transitioned")
	s.enqueue(ctx, queue.Task{
		Type:     queue.TaskCaseTransitioned,
		CaseID:   c.ID,
		LawyerID: lawyerID,
		From:     string(from),
		To:       string(to),
	})
	return c, nil
}

// ScheduleAppointment attaches an appointment to an owned, non-terminal case.
func (s *CaseService) ScheduleAppointment(ctx context.Context, p models.Principal, caseID string, input AppointmentInput) (models.Case, error) {
	lawyerID, err := requireLawyer(p)
	if err != nil {
		return models.Case{}, err
	}
	input.Reference = strings.TrimSpace(input.Reference)
	if err := validateStruct(input); err != nil {
		return models.Case{}, err
	}

	c, err := s.ownedByLawyer(ctx, lawyerID, caseID)
	if err != nil {
		return models.Case{}, err
	}
	if c.Status.Terminal() {
		return models.Case{}, ErrInvalidTransition
	}

	appointment := models.Appointment{Reference: input.Reference, At: input.At.UTC()}
	now := s.now().UTC()
	if err := s.cases.SetAppointment(ctx, c.ID, appointment, now); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return models.Case{}, ErrInvalidTransition
		}
		return models.Case{}, upstream(err)
	}
	c.Appointment = &appointment
	c.UpdatedAt = now
	return c, nil
}

// Get returns a case to its filing client or its assigned lawyer.
func (s *CaseService) Get(ctx context.Context, p models.Principal, caseID string) (models.Case, error) {
	if p.IsAnonymous() {
		return models.Case{}, ErrUnauthenticated
	}
	c, err := s.load(ctx, caseID)
	if err != nil {
		return models.Case{}, err
	}
	if !canRead(p, c) {
		return models.Case{}, ErrForbidden
	}
	return c, nil
}

// Attachment returns the case document as a data URL. ok is false when the
// case carries no attachment.
func (s *CaseService) Attachment(ctx context.Context, p models.Principal, caseID string) (string, bool, error) {
	c, err := s.Get(ctx, p, caseID)
	if err != nil {
		return "", false, err
	}
	if c.Attachment == nil {
		return "", false, nil
	}

	raw, _, err := s.blobs.Get(ctx, c.Attachment.ObjectKey)
	if err != nil {
		return "", false, upstream(err)
	}
	if err := s.verifyAttachment(c, raw); err != nil {
		s.log.Error().Err(err).Str("case_id", c.ID).Msg("attachment rejected")
		return "", false, upstream(err)
	}
	return attachment.Encode(raw, c.Attachment.Mime), true, nil
}

func (s *CaseService) verifyAttachment(c models.Case, raw []byte) error {
	sum := sha256.Sum256(raw)
	if !bytes.Equal(sum[:], c.Attachment.Checksum) {
		return errAttachmentIntegrity
	}
	if !security.VerifyAttachment(s.secret, c.Attachment.Signature, c.ID, c.Attachment.ObjectKey, c.Attachment.Checksum) {
		return errAttachmentIntegrity
	}
	return nil
}

func (s *CaseService) load(ctx context.Context, caseID string) (models.Case, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return models.Case{}, ErrNotFound
	}
	c, err := s.cases.GetByID(ctx, caseID)
	if errors.Is(err, repository.ErrCaseNotFound) {
		return models.Case{}, ErrNotFound
	}
	if err != nil {
		return models.Case{}, upstream(err)
	}
	return c, nil
}

func (s *CaseService) ownedByLawyer(ctx context.Context, lawyerID, caseID string) (models.Case, error) {
	c, err := s.load(ctx, caseID)
	if err != nil {
		return models.Case{}, err
	}
	if c.LawyerID != lawyerID {
		return models.Case{}, ErrForbidden
	}
	return c, nil
}

func canRead(p models.Principal, c models.Case) bool {
	if id, ok := p.ClientID(); ok {
		return id == c.ClientID
	}
	if id, ok := p.LawyerID(); ok {
		return id == c.LawyerID
	}
	return false
}

func (s *CaseService) enqueue(ctx context.Context, task queue.Task) {
	if s.tasks == nil {
		return
	}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		s.log.Warn().Err(err).Str("task", string(task.Type)).Str("case_id", task.CaseID).Msg("enqueue failed")
	}
}

func (s *CaseService) degraded(operation string, err error) {
	metrics.DegradedReadsTotal.WithLabelValues(operation).Inc()
	s.log.Warn().Err(err).Str("operation", operation).Msg("read degraded")
}
