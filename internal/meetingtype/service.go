package meetingtype

import (
	"context"
	"strings"
)

type CreateRequest struct {
	OwnerID          string
	Name             string
	Description      string
	Duration         int
	BufferTime       int
	Price            *float64
	Currency         string
	RequiresApproval bool
	IsActive         *bool // defaults to true
	Location         Location
	Questions        []Question
	Color            string
}

type UpdateRequest struct {
	Name             *string
	Description      *string
	Duration         *int
	BufferTime       *int
	Price            *float64
	ClearPrice       bool
	Currency         *string
	RequiresApproval *bool
	IsActive         *bool
	Location         *Location
	Questions        *[]Question
	Color            *string
}

// UsageGuard runs fn with the number of pending or confirmed bookings of a meeting type
// while no booking of that type can be reserved or rescheduled onto it.
type UsageGuard interface {
	GuardUsage(ctx context.Context, meetingTypeID string, fn func(active int) error) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*MeetingType, error)
	GetByID(ctx context.Context, id string) (*MeetingType, error)
	List(ctx context.Context, filter Filter) ([]*MeetingType, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*MeetingType, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo  Repository
	usage UsageGuard
}

// NewService builds the registry. A nil usage guard disables the in-use check on Delete.
func NewService(repo Repository, usage UsageGuard) Service {
	return &service{repo: repo, usage: usage}
}

func validate(mt *MeetingType) error {
	if strings.TrimSpace(mt.Name) == "" {
		return ErrNameRequired
	}
	if mt.Duration <= 0 {
		return ErrInvalidDuration
	}
	if mt.BufferTime < 0 {
		return ErrInvalidBuffer
	}
	if mt.Price != nil && *mt.Price < 0 {
		return ErrInvalidPrice
	}
	if !mt.Location.Kind.Valid() {
		return ErrInvalidLocation
	}

	seen := make(map[string]struct{}, len(mt.Questions))
	for _, q := range mt.Questions {
		if strings.TrimSpace(q.ID) == "" || strings.TrimSpace(q.Label) == "" || !q.Kind.Valid() {
			return ErrInvalidQuestion
		}
		if q.Kind == QuestionSelect && len(q.Options) == 0 {
			return ErrInvalidQuestion
		}
		if _, dup := seen[q.ID]; dup {
			return ErrDuplicateQuestionID
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*MeetingType, error) {
	if req.OwnerID == "" {
		return nil, ErrOwnerRequired
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	mt := &MeetingType{
		OwnerID:          req.OwnerID,
		Name:             strings.TrimSpace(req.Name),
		Description:      req.Description,
		Duration:         req.Duration,
		BufferTime:       req.BufferTime,
		Price:            req.Price,
		Currency:         strings.ToUpper(req.Currency),
		RequiresApproval: req.RequiresApproval,
		IsActive:         active,
		Location:         req.Location,
		Questions:        req.Questions,
		Color:            req.Color,
	}
	if err := validate(mt); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, mt); err != nil {
		return nil, err
	}
	return mt, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*MeetingType, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*MeetingType, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*MeetingType, error) {
	mt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		mt.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		mt.Description = *req.Description
	}
	if req.Duration != nil {
		mt.Duration = *req.Duration
	}
	if req.BufferTime != nil {
		mt.BufferTime = *req.BufferTime
	}
	if req.ClearPrice {
		mt.Price = nil
	} else if req.Price != nil {
		p := *req.Price
		mt.Price = &p
	}
	if req.Currency != nil {
		mt.Currency = strings.ToUpper(*req.Currency)
	}
	if req.RequiresApproval != nil {
		mt.RequiresApproval = *req.RequiresApproval
	}
	if req.IsActive != nil {
		mt.IsActive = *req.IsActive
	}
	if req.Location != nil {
		mt.Location = *req.Location
	}
	if req.Questions != nil {
		mt.Questions = *req.Questions
	}
	if req.Color != nil {
		mt.Color = *req.Color
	}

	if err := validate(mt); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, mt); err != nil {
		return nil, err
	}
	return mt, nil
}

// Delete removes a meeting type only when no pending or confirmed booking references it.
// Owners who want to stop taking bookings while keeping history set IsActive to false.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if s.usage == nil {
		return s.repo.Delete(ctx, id)
	}

	return s.usage.GuardUsage(ctx, id, func(active int) error {
		if active > 0 {
			return ErrInUse
		}
		return s.repo.Delete(ctx, id)
	})
}
