package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"legalease/internal/models"
	"legalease/internal/queue"
	"legalease/internal/repository"
	"legalease/internal/storage"
)

type fakeClients struct {
	mu   sync.Mutex
	byID map[string]models.Client
	err  error
}

func newFakeClients() *fakeClients { return &fakeClients{byID: map[string]models.Client{}} }

func (f *fakeClients) Create(_ context.Context, c models.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, c.Email) {
			return repository.ErrEmailTaken
		}
	}
	f.byID[c.ID] = c
	return nil
}

func (f *fakeClients) FindByEmail(_ context.Context, email string) (models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Client{}, f.err
	}
	for _, c := range f.byID {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return models.Client{}, repository.ErrClientNotFound
}

func (f *fakeClients) GetByID(_ context.Context, id string) (models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return models.Client{}, repository.ErrClientNotFound
	}
	return c, nil
}

type fakeLawyers struct {
	mu   sync.Mutex
	byID map[string]models.Lawyer
	err  error
}

func newFakeLawyers() *fakeLawyers { return &fakeLawyers{byID: map[string]models.Lawyer{}} }

func (f *fakeLawyers) Create(_ context.Context, l models.Lawyer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, l.Email) {
			return repository.ErrEmailTaken
		}
	}
	f.byID[l.ID] = l
	return nil
}

func (f *fakeLawyers) FindByEmail(_ context.Context, email string) (models.Lawyer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Lawyer{}, f.err
	}
	for _, l := range f.byID {
		if strings.EqualFold(l.Email, email) {
			return l, nil
		}
	}
	return models.Lawyer{}, repository.ErrLawyerNotFound
}

func (f *fakeLawyers) GetByID(_ context.Context, id string) (models.Lawyer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Lawyer{}, f.err
	}
	l, ok := f.byID[id]
	if !ok {
		return models.Lawyer{}, repository.ErrLawyerNotFound
	}
	return l, nil
}

func (f *fakeLawyers) add(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id] = models.Lawyer{ID: id, Email: id + "@firm.example"}
}

type fakeProfiles struct {
	mu       sync.Mutex
	byLawyer map[string]models.LawyerProfile
	order    []string
	err      error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byLawyer: map[string]models.LawyerProfile{}}
}

func (f *fakeProfiles) Create(_ context.Context, p models.LawyerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byLawyer[p.LawyerID]; ok {
		return repository.ErrProfileExists
	}
	f.byLawyer[p.LawyerID] = p
	f.order = append(f.order, p.LawyerID)
	return nil
}

func (f *fakeProfiles) GetByLawyer(_ context.Context, lawyerID string) (models.LawyerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.LawyerProfile{}, f.err
	}
	p, ok := f.byLawyer[lawyerID]
	if !ok {
		return models.LawyerProfile{}, repository.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) List(_ context.Context) ([]models.LawyerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.LawyerProfile, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.byLawyer[id])
	}
	return out, nil
}

func (f *fakeProfiles) put(p models.LawyerProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byLawyer[p.LawyerID]; !ok {
		f.order = append(f.order, p.LawyerID)
	}
	f.byLawyer[p.LawyerID] = p
}

type fakeCases struct {
	mu    sync.Mutex
	byID  map[string]models.Case
	order []string
	err   error
	// updates counts UpdateStatus calls that reached the store.
	updates int
}

func newFakeCases() *fakeCases { return &fakeCases{byID: map[string]models.Case{}} }

func (f *fakeCases) Create(_ context.Context, c models.Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.byID[c.ID] = c
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeCases) GetByID(_ context.Context, id string) (models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Case{}, f.err
	}
	c, ok := f.byID[id]
	if !ok {
		return models.Case{}, repository.ErrCaseNotFound
	}
	return c, nil
}

func (f *fakeCases) list(match func(models.Case) bool) ([]models.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Case, 0)
	for _, id := range f.order {
		if c := f.byID[id]; match(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCases) ListByClient(_ context.Context, clientID string) ([]models.Case, error) {
	return f.list(func(c models.Case) bool { return c.ClientID == clientID })
}

func (f *fakeCases) ListByLawyer(_ context.Context, lawyerID string) ([]models.Case, error) {
	return f.list(func(c models.Case) bool { return c.LawyerID == lawyerID })
}

func (f *fakeCases) StatsByLawyer(ctx context.Context, lawyerID string) (models.CaseStats, error) {
	cases, err := f.ListByLawyer(ctx, lawyerID)
	if err != nil {
		return models.CaseStats{}, err
	}
	clients := map[string]struct{}{}
	for _, c := range cases {
		clients[c.ClientID] = struct{}{}
	}
	return models.CaseStats{Cases: len(cases), Clients: len(clients)}, nil
}

func (f *fakeCases) UpdateStatus(_ context.Context, id string, from, to models.CaseStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updates++
	c, ok := f.byID[id]
	if !ok || c.Status != from {
		return repository.ErrStatusConflict
	}
	c.Status = to
	c.UpdatedAt = at
	f.byID[id] = c
	return nil
}

func (f *fakeCases) SetAppointment(_ context.Context, id string, appointment models.Appointment, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	c, ok := f.byID[id]
	if !ok || c.Status.Terminal() {
		return repository.ErrStatusConflict
	}
	c.Appointment = &appointment
	c.UpdatedAt = at
	f.byID[id] = c
	return nil
}

func (f *fakeCases) status(id string) models.CaseStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Status
}

type fakeSessions struct {
	mu   sync.Mutex
	byID map[string]models.Session
	err  error
}

func newFakeSessions() *fakeSessions { return &fakeSessions{byID: map[string]models.Session{}} }

func (f *fakeSessions) Create(_ context.Context, s models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.byID[s.ID] = s
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Session{}, f.err
	}
	s, ok := f.byID[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) DeleteByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

type cacheEntry struct {
	role models.Role
	id   string
}

type fakeSessionCache struct {
	mu      sync.Mutex
	entries   map[string]cacheEntry
	err       error
	deleteErr error
}

func newFakeSessionCache() *fakeSessionCache {
	return &fakeSessionCache{entries: map[string]cacheEntry{}}
}

func (f *fakeSessionCache) Set(_ context.Context, s models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries[s.ID] = cacheEntry{role: s.Role, id: s.IdentityID}
	return nil
}

func (f *fakeSessionCache) Get(_ context.Context, sessionID string) (models.Role, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", "", f.err
	}
	e, ok := f.entries[sessionID]
	if !ok {
		return "", "", errCacheMissForTest
	}
	return e.role, e.id, nil
}

func (f *fakeSessionCache) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.entries, sessionID)
	return nil
}

var errCacheMissForTest = errors.New("cache miss")

type blobObject struct {
	data []byte
	mime string
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string]blobObject
	err     error
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{objects: map[string]blobObject{}} }

func (f *fakeBlobs) Put(_ context.Context, key string, data []byte, mime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.objects[key] = blobObject{data: append([]byte(nil), data...), mime: mime}
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, key string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, "", f.err
	}
	obj, ok := f.objects[key]
	if !ok {
		return nil, "", storage.ErrObjectNotFound
	}
	return obj.data, obj.mime, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fakeTasks struct {
	mu    sync.Mutex
	tasks []queue.Task
	err   error
}

func (f *fakeTasks) Enqueue(_ context.Context, task queue.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeTasks) types() []queue.TaskType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]queue.TaskType, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t.Type)
	}
	return out
}
