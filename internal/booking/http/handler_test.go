package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
	"github.com/nekogravitycat/meeting-booking-backend/internal/booking"
	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/response"
)

type testEnv struct {
	router     *gin.Engine
	jwt        *auth.JWTManager
	ownerID    string
	meetingTyp *meetingtype.MeetingType
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := booking.NewMemoryRepository()
	types := meetingtype.NewService(meetingtype.NewMemoryRepository(), repo)
	svc := booking.NewService(repo, types, nil, nil, booking.Config{
		Slots: booking.SlotConfig{StartHour: 9, EndHour: 17, Step: 30 * time.Minute, EnforceBuffer: true},
		Now:   func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	})

	ownerID := uuid.NewString()
	mt, err := types.Create(context.Background(), meetingtype.CreateRequest{
		OwnerID:  ownerID,
		Name:     "Portfolio review",
		Duration: 30,
		Location: meetingtype.Location{Kind: meetingtype.LocationPhone},
	})
	require.NoError(t, err)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, time.UTC), auth.AuthRequired(jwtManager), nil)

	return &testEnv{router: r, jwt: jwtManager, ownerID: ownerID, meetingTyp: mt}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken(userID, "owner@example.com", "owner")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) bookingBody(start time.Time) CreateBookingBody {
	return CreateBookingBody{
		MeetingTypeID: e.meetingTyp.ID,
		Attendee:      AttendeeBody{Name: "Jo", Email: "jo@example.com"},
		StartTime:     start,
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/v1/public/meeting-types/"+env.meetingTyp.ID+"/availability?date=2026-03-02", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Slots, 16)
	assert.Equal(t, "2026-03-02", resp.Date)

	w = env.do(http.MethodGet, "/v1/public/meeting-types/"+env.meetingTyp.ID+"/availability?date=03/02/2026", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/v1/public/meeting-types/"+uuid.NewString()+"/availability?date=2026-03-02", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Slots)

	w = env.do(http.MethodGet, "/v1/public/meeting-types/not-a-uuid/availability?date=2026-03-02", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = AvailabilityResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Slots)
}

func TestPublicBookingAndOwnerManagement(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.token(t, env.ownerID)
	strangerToken := env.token(t, uuid.NewString())
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	w := env.do(http.MethodPost, "/v1/public/bookings", env.bookingBody(start), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created PublicBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "confirmed", created.Status)

	w = env.do(http.MethodPost, "/v1/public/bookings", env.bookingBody(start), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	var errResp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, booking.ErrTimeConflict.Message, errResp.Error)

	w = env.do(http.MethodPost, "/v1/public/bookings", env.bookingBody(start.Add(15*time.Minute)), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/v1/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/v1/bookings", nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var page response.PageResponse[BookingResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "jo@example.com", page.Items[0].Attendee.Email)

	w = env.do(http.MethodGet, "/v1/bookings", nil, strangerToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Zero(t, page.Total)

	w = env.do(http.MethodGet, "/v1/bookings/"+created.ID, nil, strangerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/v1/bookings/"+created.ID+"/reminders",
		ReminderBody{SentAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}, ownerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	reason := "owner unavailable"
	w = env.do(http.MethodPost, "/v1/bookings/"+created.ID+"/cancel", CancelBookingBody{Reason: &reason}, ownerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cancelled BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, &reason, cancelled.CancellationReason)
	assert.Len(t, cancelled.RemindersSent, 1)

	w = env.do(http.MethodPost, "/v1/bookings/"+created.ID+"/cancel", nil, ownerToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/v1/bookings/"+created.ID+"/approve", nil, ownerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/v1/public/bookings", env.bookingBody(start), "")
	assert.Equal(t, http.StatusCreated, w.Code)
}
