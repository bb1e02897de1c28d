package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"legalease/internal/config"
	"legalease/internal/media/attachment"
	"legalease/internal/media/sniffer"
	"legalease/internal/media/svg"
	"legalease/internal/models"
	"legalease/internal/repository"
)

type ProfileService struct {
	profiles ProfileStore
	limits   config.LimitsConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewProfileService(profiles ProfileStore, cfg *config.AppConfig, log zerolog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		limits:   cfg.Limits,
		log:      log.With().Str("component", "profile").Logger(),
		now:      time.Now,
	}
}

type ProfileInput struct {
	FullName          string `validate:"required,notblank,max=200"`
	PhoneNumber       string `validate:"required,phone"`
	LicenseNumber     string `validate:"required,notblank,max=100"`
	YearsOfExperience *int   `validate:"required,gte=0,lte=80"`
	WorkingLocation   string `validate:"required,notblank,max=200"`
	MinPrice          *int64 `validate:"required,gte=0"`
	// Image is an optional data URL or bare base64 body.
	Image     string
	ImageMime string
}

// profileComplete reports whether lawyerID has a complete profile. A missing
// profile is (false, nil); only store failures return an error.
func profileComplete(ctx context.Context, profiles ProfileStore, lawyerID string) (bool, error) {
	profile, err := profiles.GetByLawyer(ctx, lawyerID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return profile.Complete(), nil
}

// IsComplete is the profile completion gate. Store failures read as false.
func (s *ProfileService) IsComplete(ctx context.Context, lawyerID string) bool {
	ok, err := profileComplete(ctx, s.profiles, lawyerID)
	if err != nil {
		s.log.Warn().Err(err).Str("lawyer_id", lawyerID).Msg("profile completeness check failed")
		return false
	}
	return ok
}

// Own returns the caller's profile. A lawyer without one gets ok == false.
func (s *ProfileService) Own(ctx context.Context, p models.Principal) (models.LawyerProfile, bool, error) {
	lawyerID, err := requireLawyer(p)
	if err != nil {
		return models.LawyerProfile{}, false, err
	}
	profile, err := s.profiles.GetByLawyer(ctx, lawyerID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return models.LawyerProfile{}, false, nil
	}
	if err != nil {
		return models.LawyerProfile{}, false, upstream(err)
	}
	return profile, true, nil
}

func (s *ProfileService) Create(ctx context.Context, p models.Principal, input ProfileInput) (models.LawyerProfile, error) {
	lawyerID, err := requireLawyer(p)
	if err != nil {
		return models.LawyerProfile{}, err
	}

	input.FullName = strings.TrimSpace(input.FullName)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	input.LicenseNumber = strings.TrimSpace(input.LicenseNumber)
	input.WorkingLocation = strings.TrimSpace(input.WorkingLocation)
	if err := validateStruct(input); err != nil {
		return models.LawyerProfile{}, err
	}

	image, mime, err := s.decodeImage(input.Image, input.ImageMime)
	if err != nil {
		return models.LawyerProfile{}, err
	}

	now := s.now().UTC()
	profile := models.LawyerProfile{
		LawyerID:          lawyerID,
		FullName:          input.FullName,
		PhoneNumber:       input.PhoneNumber,
		LicenseNumber:     input.LicenseNumber,
		YearsOfExperience: input.YearsOfExperience,
		WorkingLocation:   input.WorkingLocation,
		MinPrice:          input.MinPrice,
		Image:             image,
		ImageMime:         mime,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrProfileExists) {
			return models.LawyerProfile{}, ErrProfileExists
		}
		return models.LawyerProfile{}, upstream(err)
	}

	s.log.Info().Str("lawyer_id", lawyerID).Bool("image", profile.HasImage()).Msg("lawyer profile created")
	return profile, nil
}

func (s *ProfileService) decodeImage(transport, declaredMime string) ([]byte, string, error) {
	if strings.TrimSpace(transport) == "" {
		return nil, "", nil
	}
	raw, _, err := attachment.Decode(transport, declaredMime)
	if err != nil {
		return nil, "", invalid("image", "must be base64 encoded")
	}
	if s.limits.MaxProfileImage > 0 && int64(len(raw)) > s.limits.MaxProfileImage {
		return nil, "", invalid("image", "is too large")
	}

	detected := sniffer.DetectHead(raw)
	if !detected.Image() {
		return nil, "", invalid("image", "must be a jpeg, png, gif, webp or svg image")
	}
	if detected.Type == sniffer.TypeSVG {
		raw, err = svg.Sanitize(raw)
		if err != nil {
			return nil, "", invalid("image", "is not a valid svg document")
		}
	}
	return raw, detected.MIME, nil
}
