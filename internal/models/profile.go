package models

import (
	"strings"
	"time"
)

type LawyerProfile struct {
	LawyerID          string
	FullName          string
	PhoneNumber       string
	LicenseNumber     string
	YearsOfExperience *int
	WorkingLocation   string
	// MinPrice is the minimum consultation price in minor currency units.
	MinPrice  *int64
	Image     []byte
	ImageMime string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Complete reports whether every field required for directory listing and
// case assignment is populated.
func (p LawyerProfile) Complete() bool {
	for _, field := range []string{p.FullName, p.PhoneNumber, p.LicenseNumber, p.WorkingLocation} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return p.YearsOfExperience != nil && p.MinPrice != nil
}

func (p LawyerProfile) HasImage() bool {
	return len(p.Image) > 0
}
