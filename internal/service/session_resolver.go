package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"legalease/internal/models"
	"legalease/internal/repository"
	"legalease/internal/security"
)

// SessionResolver maps an opaque session token onto a Principal. Every
// failure, including store outages, resolves to Anonymous.
type SessionResolver struct {
	sessions SessionStore
	cache    SessionCache
	secret   string
	log      zerolog.Logger
	now      func() time.Time
}

func NewSessionResolver(sessions SessionStore, cache SessionCache, secret string, log zerolog.Logger) *SessionResolver {
	return &SessionResolver{
		sessions: sessions,
		cache:    cache,
		secret:   secret,
		log:      log.With().Str("component", "session").Logger(),
		now:      time.Now,
	}
}

func (r *SessionResolver) Resolve(ctx context.Context, token string) models.Principal {
	if token == "" {
		return models.Anonymous()
	}

	claims, err := security.ParseSessionToken(token, r.secret)
	if err != nil {
		return models.Anonymous()
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return models.Anonymous()
	}
	now := r.now()
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return models.Anonymous()
	}

	if cachedRole, identityID, err := r.cache.Get(ctx, claims.SessionID); err == nil {
		if cachedRole != role || identityID != claims.Subject {
			return models.Anonymous()
		}
		return models.PrincipalFor(role, identityID)
	}

	session, err := r.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			r.log.Warn().Err(err).Msg("session lookup failed")
		}
		return models.Anonymous()
	}
	if session.Expired(now) || session.Role != role || session.IdentityID != claims.Subject {
		return models.Anonymous()
	}

	if err := r.cache.Set(ctx, session); err != nil {
		r.log.Warn().Err(err).Str("session_id", session.ID).Msg("session cache refill failed")
	}
	return models.PrincipalFor(session.Role, session.IdentityID)
}
