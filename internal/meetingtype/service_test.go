package meetingtype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsage map[string]int

func (f fakeUsage) GuardUsage(ctx context.Context, id string, fn func(active int) error) error {
	return fn(f[id])
}

func validRequest() CreateRequest {
	return CreateRequest{
		OwnerID:    "owner-1",
		Name:       "Quick Consultation",
		Duration:   15,
		BufferTime: 5,
		Location:   Location{Kind: LocationVirtual, Details: "Zoom link will be provided", Platform: "zoom"},
		Questions: []Question{
			{ID: "1", Kind: QuestionText, Label: "What would you like to discuss?", Required: true},
			{ID: "2", Kind: QuestionSelect, Label: "How did you hear about us?", Options: []string{"Google", "Referral"}},
		},
	}
}

func TestCreate(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)

	mt, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, mt.ID)
	assert.True(t, mt.IsActive, "meeting types are active by default")
	assert.Len(t, mt.Questions, 2)

	got, err := svc.GetByID(context.Background(), mt.ID)
	require.NoError(t, err)
	assert.Equal(t, mt.Name, got.Name)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	negative := -1.0

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		want   error
	}{
		{"zero duration", func(r *CreateRequest) { r.Duration = 0 }, ErrInvalidDuration},
		{"negative duration", func(r *CreateRequest) { r.Duration = -30 }, ErrInvalidDuration},
		{"negative buffer", func(r *CreateRequest) { r.BufferTime = -5 }, ErrInvalidBuffer},
		{"negative price", func(r *CreateRequest) { r.Price = &negative }, ErrInvalidPrice},
		{"blank name", func(r *CreateRequest) { r.Name = "  " }, ErrNameRequired},
		{"missing owner", func(r *CreateRequest) { r.OwnerID = "" }, ErrOwnerRequired},
		{"unknown location", func(r *CreateRequest) { r.Location.Kind = "carrier-pigeon" }, ErrInvalidLocation},
		{"select without options", func(r *CreateRequest) { r.Questions[1].Options = nil }, ErrInvalidQuestion},
		{"duplicate question ids", func(r *CreateRequest) { r.Questions[1].ID = "1" }, ErrDuplicateQuestionID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateMergesPatch(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	ctx := context.Background()

	mt, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	duration := 45
	inactive := false
	price := 150.0
	updated, err := svc.Update(ctx, mt.ID, UpdateRequest{Duration: &duration, IsActive: &inactive, Price: &price})
	require.NoError(t, err)

	assert.Equal(t, 45, updated.Duration)
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.Price)
	assert.Equal(t, 150.0, *updated.Price)
	assert.Equal(t, mt.Name, updated.Name, "fields absent from the patch are kept")

	zero := 0
	_, err = svc.Update(ctx, mt.ID, UpdateRequest{Duration: &zero})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = svc.Update(ctx, "missing", UpdateRequest{Duration: &duration})
	assert.ErrorIs(t, err, ErrNotFound)

	cleared, err := svc.Update(ctx, mt.ID, UpdateRequest{ClearPrice: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.Price)
}

func TestListKeepsInsertionOrder(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	ctx := context.Background()

	names := []string{"Strategy Session", "Phone Call", "Quick Consultation"}
	for _, n := range names {
		req := validRequest()
		req.Name = n
		_, err := svc.Create(ctx, req)
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, Filter{OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	for i, mt := range items {
		assert.Equal(t, names[i], mt.Name)
	}

	page, total, err := svc.List(ctx, Filter{OwnerID: "owner-1", Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "Quick Consultation", page[0].Name)

	none, _, err := svc.List(ctx, Filter{OwnerID: "someone-else"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteBlockedWhileBooked(t *testing.T) {
	usage := fakeUsage{}
	svc := NewService(NewMemoryRepository(), usage)
	ctx := context.Background()

	mt, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	usage[mt.ID] = 1
	assert.ErrorIs(t, svc.Delete(ctx, mt.ID), ErrInUse)

	usage[mt.ID] = 0
	require.NoError(t, svc.Delete(ctx, mt.ID))

	_, err = svc.GetByID(ctx, mt.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, mt.ID), ErrNotFound)
}

func TestStoredCopyIsIsolated(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	ctx := context.Background()

	mt, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	mt.Questions[0].Label = "mutated by caller"

	got, err := svc.GetByID(ctx, mt.ID)
	require.NoError(t, err)
	assert.Equal(t, "What would you like to discuss?", got.Questions[0].Label)
}
