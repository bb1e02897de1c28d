package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legalease/internal/media/attachment"
	"legalease/internal/middleware"
	"legalease/internal/models"
	"legalease/internal/service"
)

type profileResponse struct {
	LawyerID          string    `json:"lawyerId"`
	FullName          string    `json:"fullName"`
	PhoneNumber       string    `json:"phoneNumber"`
	LicenseNumber     string    `json:"licenseNumber"`
	YearsOfExperience *int      `json:"yearsOfExperience"`
	WorkingLocation   string    `json:"workingLocation"`
	MinPrice          *int64    `json:"minPrice"`
	ProfileImage      string    `json:"profileImage,omitempty"`
	Complete          bool      `json:"complete"`
	CreatedAt         time.Time `json:"createdAt"`
}

func toProfileResponse(profile models.LawyerProfile, image string) profileResponse {
	if image == "" && profile.HasImage() {
		image = attachment.Encode(profile.Image, profile.ImageMime)
	}
	return profileResponse{
		LawyerID:          profile.LawyerID,
		FullName:          profile.FullName,
		PhoneNumber:       profile.PhoneNumber,
		LicenseNumber:     profile.LicenseNumber,
		YearsOfExperience: profile.YearsOfExperience,
		WorkingLocation:   profile.WorkingLocation,
		MinPrice:          profile.MinPrice,
		ProfileImage:      image,
		Complete:          profile.Complete(),
		CreatedAt:         profile.CreatedAt.UTC(),
	}
}

// ListProfiles serves the client-facing lawyer directory.
func (h HandlerSet) ListProfiles(c *gin.Context) {
	entries, err := h.directory.ListAvailable(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	lawyers := make([]profileResponse, 0, len(entries))
	for _, entry := range entries {
		lawyers = append(lawyers, toProfileResponse(entry.Profile, entry.Image))
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "lawyers": lawyers})
}

// OwnProfile answers with an empty lawyerProfile list when the lawyer has
// not created one yet; absence is not an error.
func (h HandlerSet) OwnProfile(c *gin.Context) {
	profile, ok, err := h.profiles.Own(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": true, "lawyerProfile": []profileResponse{}, "complete": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        true,
		"lawyerProfile": []profileResponse{toProfileResponse(profile, "")},
		"complete":      profile.Complete(),
	})
}

type createProfileRequest struct {
	FullName          string `json:"fullName"`
	PhoneNumber       string `json:"phoneNumber"`
	LicenseNumber     string `json:"licenseNumber"`
	YearsOfExperience *int   `json:"yearsOfExperience"`
	WorkingLocation   string `json:"workingLocation"`
	MinPrice          *int64 `json:"minPrice"`
	ProfileImage      string `json:"profileImage"`
	ProfileImageMime  string `json:"profileImageMime"`
}

func (h HandlerSet) CreateProfile(c *gin.Context) {
	limitBody(c, h.cfg.Limits.MaxProfileImage)

	var req createProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.Create(c.Request.Context(), middleware.Principal(c), service.ProfileInput{
		FullName:          req.FullName,
		PhoneNumber:       req.PhoneNumber,
		LicenseNumber:     req.LicenseNumber,
		YearsOfExperience: req.YearsOfExperience,
		WorkingLocation:   req.WorkingLocation,
		MinPrice:          req.MinPrice,
		Image:             req.ProfileImage,
		ImageMime:         req.ProfileImageMime,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": true, "lawyerProfile": toProfileResponse(profile, "")})
}

type statsResponse struct {
	Cases   int `json:"cases"`
	Clients int `json:"clients"`
}

func (h HandlerSet) Dashboard(c *gin.Context) {
	dashboard, err := h.dashboard.ForLawyer(c.Request.Context(), middleware.Token(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	profile := []profileResponse{}
	if dashboard.Profile != nil {
		profile = append(profile, toProfileResponse(*dashboard.Profile, ""))
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          true,
		"lawyerProfile":   profile,
		"profileComplete": dashboard.ProfileComplete,
		"stats":           statsResponse{Cases: dashboard.Stats.Cases, Clients: dashboard.Stats.Clients},
	})
}
