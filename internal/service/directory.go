package service

import (
	"context"

	"github.com/rs/zerolog"

	"legalease/internal/media/attachment"
	"legalease/internal/metrics"
	"legalease/internal/models"
)

// DirectoryEntry is one listable lawyer. Image is a data URL or empty.
type DirectoryEntry struct {
	Profile models.LawyerProfile
	Image   string
}

// DirectoryService lists lawyers clients may file cases against. There is
// no ranking or paging.
type DirectoryService struct {
	profiles ProfileStore
	log      zerolog.Logger
}

func NewDirectoryService(profiles ProfileStore, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		profiles: profiles,
		log:      log.With().Str("component", "directory").Logger(),
	}
}

func (s *DirectoryService) ListAvailable(ctx context.Context, p models.Principal) ([]DirectoryEntry, error) {
	if _, err := requireClient(p); err != nil {
		return nil, err
	}

	entries := make([]DirectoryEntry, 0)
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("directory listing degraded")
		metrics.DegradedReadsTotal.WithLabelValues("directory").Inc()
		return entries, nil
	}

	for _, profile := range profiles {
		if !profile.Complete() {
			continue
		}
		entry := DirectoryEntry{Profile: profile}
		if profile.HasImage() {
			entry.Image = attachment.Encode(profile.Image, profile.ImageMime)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
