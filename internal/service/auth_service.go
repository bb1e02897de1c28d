package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"legalease/internal/config"
	"legalease/internal/ids"
	"legalease/internal/metrics"
	"legalease/internal/models"
	"legalease/internal/repository"
	"legalease/internal/security"
)

type AuthService struct {
	clients  ClientStore
	lawyers  LawyerStore
	sessions SessionStore
	cache    SessionCache
	cfg      config.SecurityConfig
	log      zerolog.Logger

	now  func() time.Time
	hash func(password string) ([]byte, error)

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(
	clients ClientStore,
	lawyers LawyerStore,
	sessions SessionStore,
	cache SessionCache,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		clients:  clients,
		lawyers:  lawyers,
		sessions: sessions,
		cache:    cache,
		cfg:      cfg.Security,
		log:      log.With().Str("component", "auth").Logger(),
		now:      time.Now,
		hash:     security.HashPassword,
	}
}

type RegisterInput struct {
	Role       models.Role
	FirstName  string `validate:"required,notblank,max=100"`
	MiddleName string `validate:"required,notblank,max=100"`
	LastName   string `validate:"required,notblank,max=100"`
	Email      string `validate:"required,legal_email,max=254"`
	// PhoneNumber is required for clients only.
	PhoneNumber string
	Password    string `validate:"required,password_strength,max=128"`
}

type LoginInput struct {
	Role      models.Role
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type AuthResult struct {
	Token     string
	Identity  models.Identity
	ExpiresAt time.Time
}

// Register creates a client or lawyer identity. All validation happens
// before the store is touched.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.Identity, error) {
	if !input.Role.Valid() {
		return models.Identity{}, invalid("role", "must be client or lawyer")
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.MiddleName = strings.TrimSpace(input.MiddleName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)

	if err := validateStruct(input); err != nil {
		return models.Identity{}, err
	}
	if input.Role == models.RoleClient {
		if input.PhoneNumber == "" {
			return models.Identity{}, invalid("phoneNumber", "is required")
		}
		if !phonePattern.MatchString(input.PhoneNumber) {
			return models.Identity{}, invalid("phoneNumber", "must be a valid phone number")
		}
	}

	identity, err := s.register(ctx, input)
	result := "ok"
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		result = "duplicate"
	case err != nil:
		result = "error"
	}
	metrics.RegistrationsTotal.WithLabelValues(string(input.Role), result).Inc()
	return identity, err
}

func (s *AuthService) register(ctx context.Context, input RegisterInput) (models.Identity, error) {
	if _, _, err := s.findCredentials(ctx, input.Role, input.Email); err == nil {
		return models.Identity{}, ErrDuplicateEmail
	} else if !errors.Is(err, errNoIdentity) {
		return models.Identity{}, upstream(err)
	}

	passwordHash, err := s.hash(input.Password)
	if err != nil {
		return models.Identity{}, err
	}

	name := models.PersonName{First: input.FirstName, Middle: input.MiddleName, Last: input.LastName}
	now := s.now().UTC()

	var identity models.Identity
	switch input.Role {
	case models.RoleClient:
		client := models.Client{
			ID:           ids.New(),
			Email:        input.Email,
			PasswordHash: passwordHash,
			Name:         name,
			PhoneNumber:  input.PhoneNumber,
			CreatedAt:    now,
		}
		err = s.clients.Create(ctx, client)
		identity = client.Identity()
	case models.RoleLawyer:
		lawyer := models.Lawyer{
			ID:           ids.New(),
			Email:        input.Email,
			PasswordHash: passwordHash,
			Name:         name,
			CreatedAt:    now,
		}
		err = s.lawyers.Create(ctx, lawyer)
		identity = lawyer.Identity()
	}

	if errors.Is(err, repository.ErrEmailTaken) {
		return models.Identity{}, ErrDuplicateEmail
	}
	if err != nil {
		return models.Identity{}, upstream(err)
	}

	s.log.Info().Str("role", string(input.Role)).Str("id", identity.ID).Msg("identity registered")
	return identity, nil
}

var errNoIdentity = errors.New("no identity for email")

func (s *AuthService) findCredentials(ctx context.Context, role models.Role, email string) (models.Identity, []byte, error) {
	switch role {
	case models.RoleClient:
		client, err := s.clients.FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrClientNotFound) {
			return models.Identity{}, nil, errNoIdentity
		}
		if err != nil {
			return models.Identity{}, nil, err
		}
		return client.Identity(), client.PasswordHash, nil
	case models.RoleLawyer:
		lawyer, err := s.lawyers.FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrLawyerNotFound) {
			return models.Identity{}, nil, errNoIdentity
		}
		if err != nil {
			return models.Identity{}, nil, err
		}
		return lawyer.Identity(), lawyer.PasswordHash, nil
	}
	return models.Identity{}, nil, errNoIdentity
}

// Authenticate verifies credentials for one role and opens a session bound
// to that role. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Authenticate(ctx context.Context, input LoginInput) (AuthResult, error) {
	res, err := s.authenticate(ctx, input)
	result := "ok"
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		result = "invalid"
	case err != nil:
		result = "error"
	}
	metrics.LoginsTotal.WithLabelValues(string(input.Role), result).Inc()
	return res, err
}

func (s *AuthService) authenticate(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	identity, passwordHash, err := s.findCredentials(ctx, input.Role, email)
	if errors.Is(err, errNoIdentity) {
		// Spend the same argon2 work as a real check.
		_, _ = security.VerifyPassword(input.Password, s.dummy())
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, upstream(err)
	}

	ok, err := security.VerifyPassword(input.Password, passwordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := models.Session{
		ID:         ids.New(),
		Role:       identity.Role,
		IdentityID: identity.ID,
		IPAddress:  input.IPAddress,
		UserAgent:  input.UserAgent,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, upstream(err)
	}
	if err := s.cache.Set(ctx, session); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID).Msg("session cache write failed")
	}

	token, err := security.GenerateSessionToken(s.cfg.SessionSecret, session.ID, string(session.Role), identity.ID, now, session.ExpiresAt)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{Token: token, Identity: identity, ExpiresAt: session.ExpiresAt}, nil
}

// Revoke destroys the session behind token. Tokens that do not verify are
// ignored; expired ones still remove their row.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := security.ParseSessionTokenIgnoringExpiry(token, s.cfg.SessionSecret)
	if err != nil {
		return nil
	}

	if err := s.sessions.DeleteByID(ctx, claims.SessionID); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return upstream(err)
	}
	// A cached entry outlives the row and keeps the token resolving, so a
	// failed evict fails the logout.
	if err := s.cache.Delete(ctx, claims.SessionID); err != nil {
		s.log.Warn().Err(err).Str("session_id", claims.SessionID).Msg("session cache evict failed")
		return upstream(err)
	}
	return nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := s.hash("legalease-timing-equalizer")
		if err != nil {
			s.log.Error().Err(err).Msg("dummy hash failed")
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
