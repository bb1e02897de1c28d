package tasks

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalease/internal/models"
	"legalease/internal/repository"
	"legalease/internal/security"
	"legalease/internal/storage"
)

const secret = "attachment-secret"

type fakeSessions struct {
	calledAt time.Time
	removed  int64
	err      error
}

func (f *fakeSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.calledAt = now
	return f.removed, f.err
}

type fakeCases map[string]models.Case

func (f fakeCases) GetByID(_ context.Context, id string) (models.Case, error) {
	c, ok := f[id]
	if !ok {
		return models.Case{}, repository.ErrCaseNotFound
	}
	return c, nil
}

type fakeBlobs struct {
	objects map[string][]byte
	err     error
}

func (f fakeBlobs) Get(_ context.Context, key string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	raw, ok := f.objects[key]
	if !ok {
		return nil, "", storage.ErrObjectNotFound
	}
	return raw, "application/pdf", nil
}

func attachedCase(id string, raw []byte) models.Case {
	key := storage.AttachmentKey(id)
	sum := sha256.Sum256(raw)
	return models.Case{
		ID: id,
		Attachment: &models.Attachment{
			ObjectKey: key,
			Mime:      "application/pdf",
			SizeBytes: int64(len(raw)),
			Checksum:  sum[:],
			Signature: security.SignAttachment(secret, id, key, sum[:]),
		},
	}
}

func message(values map[string]interface{}) redis.XMessage {
	return redis.XMessage{ID: "1-0", Values: values}
}

func TestPurgeSessions(t *testing.T) {
	sessions := &fakeSessions{removed: 3}
	p := NewProcessor(sessions, fakeCases{}, fakeBlobs{}, secret, zerolog.Nop())
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Handle(context.Background(), message(map[string]interface{}{"type": "sessions.purge", "at": fixed.Format(time.RFC3339Nano)})))
	assert.Equal(t, fixed, sessions.calledAt)
}

func TestPurgeSessionsFailureIsRetried(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("db down")}
	p := NewProcessor(sessions, fakeCases{}, fakeBlobs{}, secret, zerolog.Nop())

	assert.Error(t, p.Handle(context.Background(), message(map[string]interface{}{"type": "sessions.purge"})))
}

func TestCaseCreatedVerifiesAttachment(t *testing.T) {
	raw := []byte("%PDF-1.7 contract")
	c := attachedCase("c1", raw)
	blobs := fakeBlobs{objects: map[string][]byte{c.Attachment.ObjectKey: raw}}
	p := NewProcessor(&fakeSessions{}, fakeCases{"c1": c}, blobs, secret, zerolog.Nop())

	assert.NoError(t, p.Handle(context.Background(), message(map[string]interface{}{"type": "case.created", "caseId": "c1"})))
}

func TestCaseCreatedTamperedAttachmentIsAcked(t *testing.T) {
	c := attachedCase("c1", []byte("%PDF-1.7 original"))
	blobs := fakeBlobs{objects: map[string][]byte{c.Attachment.ObjectKey: []byte("%PDF-1.7 swapped")}}
	p := NewProcessor(&fakeSessions{}, fakeCases{"c1": c}, blobs, secret, zerolog.Nop())

	assert.NoError(t, p.Handle(context.Background(), message(map[string]interface{}{"type": "case.created", "caseId": "c1"})))
}

func TestCaseCreatedBlobOutageIsRetried(t *testing.T) {
	c := attachedCase("c1", []byte("%PDF-1.7"))
	p := NewProcessor(&fakeSessions{}, fakeCases{"c1": c}, fakeBlobs{err: errors.New("minio unreachable")}, secret, zerolog.Nop())

	assert.Error(t, p.Handle(context.Background(), message(map[string]interface{}{"type": "case.created", "caseId": "c1"})))
}

func TestCaseCreatedWithoutAttachmentOrCase(t *testing.T) {
	p := NewProcessor(&fakeSessions{}, fakeCases{"c1": {ID: "c1"}}, fakeBlobs{}, secret, zerolog.Nop())

	assert.NoError(t, p.Handle(context.Background(), message(map[string]interface{}{"type": "case.created", "caseId": "c1"})))
	assert.NoError(t, p.Handle(context.Background(), message(map[string]interface{}{"type": "case.created", "caseId": "gone"})))
}

func TestUnknownAndMalformedTasksAreDropped(t *testing.T) {
	p := NewProcessor(&fakeSessions{}, fakeCases{}, fakeBlobs{}, secret, zerolog.Nop())

	assert.NoError(t, p.Handle(context.Background(), message(map[string]interface{}{"type": "media.ingest"})))
	assert.NoError(t, p.Handle(context.Background(), message(map[string]interface{}{"caseId": "c1"})))
	assert.NoError(t, p.Handle(context.Background(), message(map[string]interface{}{"type": "case.transitioned", "at": "not-a-time"})))
}

func TestCaseTransitionedIsAudited(t *testing.T) {
	p := NewProcessor(&fakeSessions{}, fakeCases{}, fakeBlobs{}, secret, zerolog.Nop())

	assert.NoError(t, p.Handle(context.Background(), message(map[string]interface{}{
		"type":     "case.transitioned",
		"caseId":   "c1",
		"lawyerId": "l1",
		"from":     "Pending",
		"to":       "In Progress",
		"at":       "2026-05-01T12:00:00Z",
	})))
}
