package http

import (
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/request"
)

// ListMeetingTypesRequest defines query parameters for listing meeting types.
type ListMeetingTypesRequest struct {
	request.ListParams
	ActiveOnly bool `form:"active_only"`
}

type LocationBody struct {
	Kind     string `json:"kind" binding:"required,oneof=virtual in_person phone"`
	Details  string `json:"details" binding:"max=500"`
	Platform string `json:"platform" binding:"max=50"`
}

type QuestionBody struct {
	ID       string   `json:"id" binding:"required,max=50"`
	Kind     string   `json:"kind" binding:"required,oneof=text textarea select phone email"`
	Label    string   `json:"label" binding:"required,max=200"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
}

type CreateMeetingTypeBody struct {
	Name             string         `json:"name" binding:"required,min=1,max=100"`
	Description      string         `json:"description" binding:"max=2000"`
	Duration         int            `json:"duration" binding:"required"`
	BufferTime       int            `json:"buffer_time"`
	Price            *float64       `json:"price"`
	Currency         string         `json:"currency" binding:"omitempty,len=3"`
	RequiresApproval bool           `json:"requires_approval"`
	IsActive         *bool          `json:"is_active"`
	Location         LocationBody   `json:"location" binding:"required"`
	Questions        []QuestionBody `json:"questions" binding:"dive"`
	Color            string         `json:"color" binding:"omitempty,hexcolor"`
}

type UpdateMeetingTypeBody struct {
	Name             *string         `json:"name" binding:"omitempty,min=1,max=100"`
	Description      *string         `json:"description" binding:"omitempty,max=2000"`
	Duration         *int            `json:"duration"`
	BufferTime       *int            `json:"buffer_time"`
	Price            *float64        `json:"price"`
	ClearPrice       bool            `json:"clear_price"`
	Currency         *string         `json:"currency" binding:"omitempty,len=3"`
	RequiresApproval *bool           `json:"requires_approval"`
	IsActive         *bool           `json:"is_active"`
	Location         *LocationBody   `json:"location"`
	Questions        *[]QuestionBody `json:"questions"`
	Color            *string         `json:"color" binding:"omitempty,hexcolor"`
}

type MeetingTypeResponse struct {
	ID               string                 `json:"id"`
	OwnerID          string                 `json:"owner_id"`
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	Duration         int                    `json:"duration"`
	BufferTime       int                    `json:"buffer_time"`
	Price            *float64               `json:"price,omitempty"`
	Currency         string                 `json:"currency,omitempty"`
	RequiresApproval bool                   `json:"requires_approval"`
	IsActive         bool                   `json:"is_active"`
	Location         meetingtype.Location   `json:"location"`
	Questions        []meetingtype.Question `json:"questions"`
	Color            string                 `json:"color,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func NewMeetingTypeResponse(mt *meetingtype.MeetingType) MeetingTypeResponse {
	questions := mt.Questions
	if questions == nil {
		questions = []meetingtype.Question{}
	}
	return MeetingTypeResponse{
		ID:               mt.ID,
		OwnerID:          mt.OwnerID,
		Name:             mt.Name,
		Description:      mt.Description,
		Duration:         mt.Duration,
		BufferTime:       mt.BufferTime,
		Price:            mt.Price,
		Currency:         mt.Currency,
		RequiresApproval: mt.RequiresApproval,
		IsActive:         mt.IsActive,
		Location:         mt.Location,
		Questions:        questions,
		Color:            mt.Color,
		CreatedAt:        mt.CreatedAt,
		UpdatedAt:        mt.UpdatedAt,
	}
}

func (b LocationBody) toDomain() meetingtype.Location {
	return meetingtype.Location{
		Kind:     meetingtype.LocationKind(b.Kind),
		Details:  b.Details,
		Platform: b.Platform,
	}
}

func toQuestions(body []QuestionBody) []meetingtype.Question {
	qs := make([]meetingtype.Question, len(body))
	for i, q := range body {
		qs[i] = meetingtype.Question{
			ID:       q.ID,
			Kind:     meetingtype.QuestionKind(q.Kind),
			Label:    q.Label,
			Required: q.Required,
			Options:  q.Options,
		}
	}
	return qs
}
