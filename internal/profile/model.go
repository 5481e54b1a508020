package profile

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound            = apperror.New(http.StatusNotFound, "portfolio not found")
	ErrInvalidURL          = apperror.New(http.StatusBadRequest, "links must be absolute http or https URLs")
	ErrUnknownPlatform     = apperror.New(http.StatusBadRequest, "unsupported social platform")
	ErrTooManySkills       = apperror.New(http.StatusBadRequest, "at most 30 skills are allowed")
	ErrInvalidService      = apperror.New(http.StatusBadRequest, "services need a name")
	ErrInvalidTestimonial  = apperror.New(http.StatusBadRequest, "testimonials need a name, content and a rating from 1 to 5")
	ErrInvalidContactEmail = apperror.New(http.StatusBadRequest, "contact email is invalid")
	ErrInvalidImage        = apperror.New(http.StatusBadRequest, "profile image id is invalid")
)

const maxSkills = 30

// SocialPlatform is the closed set of networks a portfolio can link to.
type SocialPlatform string

const (
	PlatformLinkedIn  SocialPlatform = "linkedin"
	PlatformGitHub    SocialPlatform = "github"
	PlatformTwitter   SocialPlatform = "twitter"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformWebsite   SocialPlatform = "website"
	PlatformBehance   SocialPlatform = "behance"
)

func (p SocialPlatform) Valid() bool {
	switch p {
	case PlatformLinkedIn, PlatformGitHub, PlatformTwitter, PlatformInstagram, PlatformWebsite, PlatformBehance:
		return true
	}
	return false
}

type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"` // free text, e.g. "$80/hour"
	Description string `json:"description"`
}

type Contact struct {
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Calendly string `json:"calendly,omitempty"`
}

type Testimonial struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// Profile is a freelancer's public portfolio.
type Profile struct {
	UserID         string
	Name           string
	Bio            string
	ProfileImageID *string
	VideoURL       string
	ResumeURL      string
	Services       []Service
	Skills         []string
	SocialLinks    map[SocialPlatform]string
	Contact        Contact
	Testimonials   []Testimonial
	Published      bool
	UpdatedAt      time.Time
}

// Empty returns the blank portfolio every user starts with.
func Empty(userID string) *Profile {
	return &Profile{
		UserID:       userID,
		Services:     []Service{},
		Skills:       []string{},
		SocialLinks:  map[SocialPlatform]string{},
		Testimonials: []Testimonial{},
	}
}

func (p *Profile) Clone() *Profile {
	cp := *p
	if p.ProfileImageID != nil {
		id := *p.ProfileImageID
		cp.ProfileImageID = &id
	}
	cp.Services = append([]Service{}, p.Services...)
	cp.Skills = append([]string{}, p.Skills...)
	cp.Testimonials = append([]Testimonial{}, p.Testimonials...)
	cp.SocialLinks = make(map[SocialPlatform]string, len(p.SocialLinks))
	for k, v := range p.SocialLinks {
		cp.SocialLinks[k] = v
	}
	return &cp
}
