package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"legalease/internal/config"
	"legalease/internal/models"
	"legalease/internal/security"
)

const testPassword = "Str0ng!Pass"

var fastParams = security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type testEnv struct {
	clients  *fakeClients
	lawyers  *fakeLawyers
	profiles *fakeProfiles
	cases    *fakeCases
	sessions *fakeSessions
	cache    *fakeSessionCache
	blobs    *fakeBlobs
	tasks    *fakeTasks

	cfg       *config.AppConfig
	auth      *AuthService
	resolver  *SessionResolver
	profile   *ProfileService
	directory *DirectoryService
	caseSvc   *CaseService
	dashboard *DashboardService
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			SessionSecret:    "test-session-secret-0123456789abcdef",
			SessionTTL:       time.Hour,
			CookieName:       "legalease_session",
			AttachmentSecret: "test-attachment-secret",
		},
		Limits: config.LimitsConfig{
			MaxAttachmentBytes: 1 << 20,
			MaxProfileImage:    1 << 16,
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		clients:  newFakeClients(),
		lawyers:  newFakeLawyers(),
		profiles: newFakeProfiles(),
		cases:    newFakeCases(),
		sessions: newFakeSessions(),
		cache:    newFakeSessionCache(),
		blobs:    newFakeBlobs(),
		tasks:    &fakeTasks{},
		cfg:      testConfig(),
	}
	log := zerolog.Nop()

	env.auth = NewAuthService(env.clients, env.lawyers, env.sessions, env.cache, env.cfg, log)
	env.auth.hash = func(password string) ([]byte, error) {
		return security.HashPasswordWithParams(password, fastParams)
	}
	env.resolver = NewSessionResolver(env.sessions, env.cache, env.cfg.Security.SessionSecret, log)
	env.profile = NewProfileService(env.profiles, env.cfg, log)
	env.directory = NewDirectoryService(env.profiles, log)
	env.caseSvc = NewCaseService(env.cases, env.lawyers, env.profiles, env.blobs, env.tasks, env.cfg, log)
	env.dashboard = NewDashboardService(env.resolver, env.profiles, env.caseSvc, log)
	return env
}

func completeProfile(lawyerID string) models.LawyerProfile {
	years := 7
	price := int64(250000)
	return models.LawyerProfile{
		LawyerID:          lawyerID,
		FullName:          "Hana Girma",
		PhoneNumber:       "+251 911 223344",
		LicenseNumber:     "ETH-LIC-0042",
		YearsOfExperience: &years,
		WorkingLocation:   "Addis Ababa",
		MinPrice:          &price,
		CreatedAt:         time.Now().UTC(),
	}
}

// withListedLawyer registers a lawyer row with a complete profile.
func (e *testEnv) withListedLawyer(id string) {
	e.lawyers.add(id)
	e.profiles.put(completeProfile(id))
}

func (e *testEnv) registerAndLogin(t *testing.T, role models.Role, email string) (models.Identity, string) {
	t.Helper()
	ctx := context.Background()

	identity, err := e.auth.Register(ctx, RegisterInput{
		Role:        role,
		FirstName:   "Selam",
		MiddleName:  "T",
		LastName:    "Bekele",
		Email:       email,
		PhoneNumber: "+251911000111",
		Password:    testPassword,
	})
	require.NoError(t, err)

	res, err := e.auth.Authenticate(ctx, LoginInput{Role: role, Email: email, Password: testPassword})
	require.NoError(t, err)
	return identity, res.Token
}
