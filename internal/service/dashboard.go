package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"legalease/internal/models"
	"legalease/internal/repository"
)

type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) models.Principal
}

type LawyerStats interface {
	StatsForLawyer(ctx context.Context, lawyerID string) models.CaseStats
}

// Dashboard is the lawyer landing view. Profile is nil when the lawyer has
// not created one or it could not be read.
type Dashboard struct {
	Profile         *models.LawyerProfile
	ProfileComplete bool
	Stats           models.CaseStats
}

type DashboardService struct {
	resolver PrincipalResolver
	profiles ProfileStore
	stats    LawyerStats
	log      zerolog.Logger
}

func NewDashboardService(resolver PrincipalResolver, profiles ProfileStore, stats LawyerStats, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		resolver: resolver,
		profiles: profiles,
		stats:    stats,
		log:      log.With().Str("component", "dashboard").Logger(),
	}
}

// ForLawyer fetches profile and stats concurrently and joins them once both
// finish. The session is checked again after the join; a session revoked
// meanwhile fails the whole call.
func (s *DashboardService) ForLawyer(ctx context.Context, token string) (Dashboard, error) {
	lawyerID, err := requireLawyer(s.resolver.Resolve(ctx, token))
	if err != nil {
		return Dashboard{}, err
	}

	var (
		wg      sync.WaitGroup
		profile *models.LawyerProfile
		stats   models.CaseStats
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		p, err := s.profiles.GetByLawyer(ctx, lawyerID)
		switch {
		case err == nil:
			profile = &p
		case !errors.Is(err, repository.ErrProfileNotFound):
			s.log.Warn().Err(err).Str("lawyer_id", lawyerID).Msg("dashboard profile degraded")
		}
	}()
	go func() {
		defer wg.Done()
		stats = s.stats.StatsForLawyer(ctx, lawyerID)
	}()
	wg.Wait()

	again, ok := s.resolver.Resolve(ctx, token).LawyerID()
	if !ok || again != lawyerID {
		return Dashboard{}, ErrUnauthenticated
	}

	return Dashboard{
		Profile:         profile,
		ProfileComplete: profile != nil && profile.Complete(),
		Stats:           stats,
	}, nil
}
