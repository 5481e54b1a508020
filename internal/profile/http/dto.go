package http

import (
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/profile"
)

type UpsertProfileRequest struct {
	Name           *string                           `json:"name" binding:"omitempty,max=100"`
	Bio            *string                           `json:"bio" binding:"omitempty,max=5000"`
	ProfileImageID *string                           `json:"profile_image_id"`
	VideoURL       *string                           `json:"video_url"`
	ResumeURL      *string                           `json:"resume_url"`
	Services       *[]profile.Service                `json:"services"`
	Skills         *[]string                         `json:"skills"`
	SocialLinks    map[profile.SocialPlatform]string `json:"social_links"`
	Contact        *profile.Contact                  `json:"contact"`
	Testimonials   *[]profile.Testimonial            `json:"testimonials"`
	Published      *bool                             `json:"published"`
}

func (r UpsertProfileRequest) toPatch() profile.Patch {
	return profile.Patch{
		Name:           r.Name,
		Bio:            r.Bio,
		ProfileImageID: r.ProfileImageID,
		VideoURL:       r.VideoURL,
		ResumeURL:      r.ResumeURL,
		Services:       r.Services,
		Skills:         r.Skills,
		SocialLinks:    r.SocialLinks,
		Contact:        r.Contact,
		Testimonials:   r.Testimonials,
		Published:      r.Published,
	}
}

// QRCodeRequest defines query parameters for QR code rendering.
type QRCodeRequest struct {
	Size int `form:"size" binding:"omitempty,min=64,max=1024"`
}

type ProfileResponse struct {
	Name           string                            `json:"name"`
	Bio            string                            `json:"bio"`
	ProfileImageID *string                           `json:"profile_image_id,omitempty"`
	VideoURL       string                            `json:"video_url,omitempty"`
	ResumeURL      string                            `json:"resume_url,omitempty"`
	Services       []profile.Service                 `json:"services"`
	Skills         []string                          `json:"skills"`
	SocialLinks    map[profile.SocialPlatform]string `json:"social_links"`
	Contact        profile.Contact                   `json:"contact"`
	Testimonials   []profile.Testimonial             `json:"testimonials"`
	Published      bool                              `json:"published"`
	PortfolioURL   string                            `json:"portfolio_url,omitempty"`
	UpdatedAt      *time.Time                        `json:"updated_at,omitempty"`
}

func NewProfileResponse(p *profile.Profile, portfolioURL string) ProfileResponse {
	p = p.Clone()
	resp := ProfileResponse{
		Name:           p.Name,
		Bio:            p.Bio,
		ProfileImageID: p.ProfileImageID,
		VideoURL:       p.VideoURL,
		ResumeURL:      p.ResumeURL,
		Services:       p.Services,
		Skills:         p.Skills,
		SocialLinks:    p.SocialLinks,
		Contact:        p.Contact,
		Testimonials:   p.Testimonials,
		Published:      p.Published,
		PortfolioURL:   portfolioURL,
	}
	if !p.UpdatedAt.IsZero() {
		resp.UpdatedAt = &p.UpdatedAt
	}
	return resp
}
