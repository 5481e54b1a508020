package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/nekogravitycat/meeting-booking-backend/internal/user"
)

const (
	defaultQRSize = 256
	minQRSize     = 64
	maxQRSize     = 1024
)

// Patch holds the fields to overwrite; nil fields keep their stored value.
type Patch struct {
	Name           *string
	Bio            *string
	ProfileImageID *string // empty string clears the image
	VideoURL       *string
	ResumeURL      *string
	Services       *[]Service
	Skills         *[]string
	SocialLinks    map[SocialPlatform]string // replaces all links when non-nil
	Contact        *Contact
	Testimonials   *[]Testimonial
	Published      *bool
}

// UserLookup resolves public usernames.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

type Service interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, userID string, patch Patch) (*Profile, error)
	Reset(ctx context.Context, userID string) error
	PublicByUsername(ctx context.Context, username string) (*Profile, error)
	PortfolioURL(username string) string
	QRCode(ctx context.Context, username string, size int) ([]byte, error)
}

type service struct {
	repo    Repository
	users   UserLookup
	baseURL string
	logger  *slog.Logger
}

func NewService(repo Repository, users UserLookup, publicBaseURL string, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:    repo,
		users:   users,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:  logger.With(slog.String("component", "profile")),
	}
}

// Get returns the stored portfolio, or a blank one for users who never saved it.
func (s *service) Get(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Empty(userID), nil
	}
	return p, err
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// optionalURL trims raw and accepts it when empty or a valid absolute URL.
func optionalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !validURL(raw) {
		return "", ErrInvalidURL
	}
	return raw, nil
}

func normalizeSkills(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, skill := range in {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	if len(out) > maxSkills {
		return nil, ErrTooManySkills
	}
	return out, nil
}

func normalizeServices(in []Service) ([]Service, error) {
	out := make([]Service, 0, len(in))
	for _, svc := range in {
		svc.Name = strings.TrimSpace(svc.Name)
		if svc.Name == "" {
			return nil, ErrInvalidService
		}
		if svc.ID == "" {
			svc.ID = uuid.NewString()
		}
		svc.Price = strings.TrimSpace(svc.Price)
		out = append(out, svc)
	}
	return out, nil
}

func normalizeTestimonials(in []Testimonial) ([]Testimonial, error) {
	out := make([]Testimonial, 0, len(in))
	for _, t := range in {
		t.Name = strings.TrimSpace(t.Name)
		t.Content = strings.TrimSpace(t.Content)
		if t.Name == "" || t.Content == "" || t.Rating < 1 || t.Rating > 5 {
			return nil, ErrInvalidTestimonial
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		out = append(out, t)
	}
	return out, nil
}

func normalizeLinks(in map[SocialPlatform]string) (map[SocialPlatform]string, error) {
	out := make(map[SocialPlatform]string, len(in))
	for platform, link := range in {
		if !platform.Valid() {
			return nil, ErrUnknownPlatform
		}
		link, err := optionalURL(link)
		if err != nil {
			return nil, err
		}
		if link != "" {
			out[platform] = link
		}
	}
	return out, nil
}

func normalizeContact(c Contact) (Contact, error) {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email != "" {
		if addr, err := mail.ParseAddress(c.Email); err != nil || addr.Address != c.Email {
			return c, ErrInvalidContactEmail
		}
	}
	c.WhatsApp = strings.TrimSpace(c.WhatsApp)
	calendly, err := optionalURL(c.Calendly)
	if err != nil {
		return c, err
	}
	c.Calendly = calendly
	return c, nil
}

func (s *service) Upsert(ctx context.Context, userID string, patch Patch) (*Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Bio != nil {
		p.Bio = strings.TrimSpace(*patch.Bio)
	}
	if patch.ProfileImageID != nil {
		if *patch.ProfileImageID == "" {
			p.ProfileImageID = nil
		} else {
			if _, err := uuid.Parse(*patch.ProfileImageID); err != nil {
				return nil, ErrInvalidImage
			}
			id := *patch.ProfileImageID
			p.ProfileImageID = &id
		}
	}
	if patch.VideoURL != nil {
		if p.VideoURL, err = optionalURL(*patch.VideoURL); err != nil {
			return nil, err
		}
	}
	if patch.ResumeURL != nil {
		if p.ResumeURL, err = optionalURL(*patch.ResumeURL); err != nil {
			return nil, err
		}
	}
	if patch.Services != nil {
		if p.Services, err = normalizeServices(*patch.Services); err != nil {
			return nil, err
		}
	}
	if patch.Skills != nil {
		if p.Skills, err = normalizeSkills(*patch.Skills); err != nil {
			return nil, err
		}
	}
	if patch.SocialLinks != nil {
		if p.SocialLinks, err = normalizeLinks(patch.SocialLinks); err != nil {
			return nil, err
		}
	}
	if patch.Contact != nil {
		if p.Contact, err = normalizeContact(*patch.Contact); err != nil {
			return nil, err
		}
	}
	if patch.Testimonials != nil {
		if p.Testimonials, err = normalizeTestimonials(*patch.Testimonials); err != nil {
			return nil, err
		}
	}
	if patch.Published != nil {
		p.Published = *patch.Published
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "portfolio saved", slog.String("user_id", userID), slog.Bool("published", p.Published))
	return p, nil
}

func (s *service) Reset(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

func (s *service) resolve(ctx context.Context, username string) (*user.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrNotFound
	}
	return u, nil
}

// PublicByUsername returns the published portfolio of username. Unpublished portfolios
// are reported as missing.
func (s *service) PublicByUsername(ctx context.Context, username string) (*Profile, error) {
	u, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *service) PortfolioURL(username string) string {
	return s.baseURL + "/u/" + url.PathEscape(username)
}

// QRCode renders a PNG QR code pointing at the public portfolio of username.
func (s *service) QRCode(ctx context.Context, username string, size int) ([]byte, error) {
	u, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}

	switch {
	case size == 0:
		size = defaultQRSize
	case size < minQRSize:
		size = minQRSize
	case size > maxQRSize:
		size = maxQRSize
	}
	return qrcode.Encode(s.PortfolioURL(u.Username), qrcode.Medium, size)
}
