package service

import (
	"context"
	"time"

	"legalease/internal/models"
	"legalease/internal/queue"
)

// Store implementations live in internal/repository, internal/cache and
// internal/storage. Not-found conditions are reported with the repository
// package sentinels.

type ClientStore interface {
	Create(ctx context.Context, client models.Client) error
	FindByEmail(ctx context.Context, email string) (models.Client, error)
	GetByID(ctx context.Context, id string) (models.Client, error)
}

type LawyerStore interface {
	Create(ctx context.Context, lawyer models.Lawyer) error
	FindByEmail(ctx context.Context, email string) (models.Lawyer, error)
	GetByID(ctx context.Context, id string) (models.Lawyer, error)
}

type ProfileStore interface {
	Create(ctx context.Context, profile models.LawyerProfile) error
	GetByLawyer(ctx context.Context, lawyerID string) (models.LawyerProfile, error)
	List(ctx context.Context) ([]models.LawyerProfile, error)
}

type CaseStore interface {
	Create(ctx context.Context, c models.Case) error
	GetByID(ctx context.Context, id string) (models.Case, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Case, error)
	ListByLawyer(ctx context.Context, lawyerID string) ([]models.Case, error)
	StatsByLawyer(ctx context.Context, lawyerID string) (models.CaseStats, error)
	UpdateStatus(ctx context.Context, id string, from, to models.CaseStatus, at time.Time) error
	SetAppointment(ctx context.Context, id string, appointment models.Appointment, at time.Time) error
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type SessionCache interface {
	Set(ctx context.Context, session models.Session) error
	Get(ctx context.Context, sessionID string) (models.Role, string, error)
	Delete(ctx context.Context, sessionID string) error
}

type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, mime string) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}
