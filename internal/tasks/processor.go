package tasks

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"legalease/internal/metrics"
	"legalease/internal/models"
	"legalease/internal/queue"
	"legalease/internal/repository"
	"legalease/internal/security"
	"legalease/internal/storage"
)

type SessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type CaseReader interface {
	GetByID(ctx context.Context, id string) (models.Case, error)
}

type BlobReader interface {
	Get(ctx context.Context, key string) ([]byte, string, error)
}

// Processor handles tasks read from the worker stream. A returned error
// leaves the message pending for redelivery; permanent failures are logged
// and acknowledged.
type Processor struct {
	sessions SessionPurger
	cases    CaseReader
	blobs    BlobReader
	secret   string
	logger   zerolog.Logger
	now      func() time.Time
}

func NewProcessor(sessions SessionPurger, cases CaseReader, blobs BlobReader, attachmentSecret string, logger zerolog.Logger) *Processor {
	return &Processor{
		sessions: sessions,
		cases:    cases,
		blobs:    blobs,
		secret:   attachmentSecret,
		logger:   logger.With().Str("component", "tasks").Logger(),
		now:      time.Now,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var task queue.Task
	if err := decodePayload(msg.Values, &task); err != nil {
		p.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dropping undecodable task")
		metrics.TasksProcessedTotal.WithLabelValues("unknown", "dropped").Inc()
		return nil
	}

	var err error
	switch task.Type {
	case queue.TaskPurgeSessions:
		err = p.handlePurgeSessions(ctx)
	case queue.TaskCaseCreated:
		err = p.handleCaseCreated(ctx, task)
	case queue.TaskCaseTransitioned:
		err = p.handleCaseTransitioned(task)
	default:
		p.logger.Warn().Str("type", string(task.Type)).Msg("unknown task type")
		metrics.TasksProcessedTotal.WithLabelValues(string(task.Type), "dropped").Inc()
		return nil
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.TasksProcessedTotal.WithLabelValues(string(task.Type), result).Inc()
	return err
}

func decodePayload(values map[string]interface{}, out *queue.Task) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	if out.Type == "" {
		return errors.New("task type missing")
	}
	return nil
}

func (p *Processor) handlePurgeSessions(ctx context.Context) error {
	removed, err := p.sessions.DeleteExpired(ctx, p.now().UTC())
	if err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}
	p.logger.Info().Int64("removed", removed).Msg("expired sessions purged")
	return nil
}

// handleCaseCreated re-reads a new case's attachment and checks it against
// the stored checksum and signature.
func (p *Processor) handleCaseCreated(ctx context.Context, task queue.Task) error {
	c, err := p.cases.GetByID(ctx, task.CaseID)
	if errors.Is(err, repository.ErrCaseNotFound) {
		p.logger.Warn().Str("case_id", task.CaseID).Msg("created case vanished")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load case %s: %w", task.CaseID, err)
	}
	if c.Attachment == nil {
		return nil
	}

	raw, _, err := p.blobs.Get(ctx, c.Attachment.ObjectKey)
	if errors.Is(err, storage.ErrObjectNotFound) {
		p.logger.Error().Str("case_id", c.ID).Str("key", c.Attachment.ObjectKey).Msg("attachment object missing")
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch attachment %s: %w", c.Attachment.ObjectKey, err)
	}

	sum := sha256.Sum256(raw)
	if !bytes.Equal(sum[:], c.Attachment.Checksum) ||
		!security.VerifyAttachment(p.secret, c.Attachment.Signature, c.ID, c.Attachment.ObjectKey, c.Attachment.Checksum) {
		p.logger.Error().Str("case_id", c.ID).Msg("attachment integrity check failed")
		return nil
	}

	p.logger.Info().
		Str("case_id", c.ID).
		Int64("size_bytes", c.Attachment.SizeBytes).
		Msg("attachment verified")
	return nil
}

func (p *Processor) handleCaseTransitioned(task queue.Task) error {
	p.logger.Info().
		Str("case_id", task.CaseID).
		Str("lawyer_id", task.LawyerID).
		Str("from", task.From).
		Str("to", task.To).
		Time("at", task.At).
		Msg("case transitioned")
	return nil
}
