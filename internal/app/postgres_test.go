package app

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/meeting-booking-backend/internal/booking"
	"github.com/nekogravitycat/meeting-booking-backend/internal/db"
)

// newPostgresContainer runs against TEST_DB_DSN and is skipped when it is unset.
func newPostgresContainer(t *testing.T) *Container {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE TABLE public.bookings, public.meeting_types, public.profiles, public.media, public.users CASCADE")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	c, err := NewContainer(Config{
		DBPool:     pool,
		JWTSecret:  "test-secret",
		JWTTTL:     time.Hour,
		BcryptCost: 4,
		Slots:      booking.SlotConfig{StartHour: 9, EndHour: 17, Step: 30 * time.Minute, EnforceBuffer: true},
		Timezone:   time.UTC,
		MediaDir:   t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Dispatcher.Close(context.Background()) })
	return c
}

func TestPostgresConcurrentBookingsOfOneSlot(t *testing.T) {
	c := newPostgresContainer(t)
	r := c.Router

	w := call(r, http.MethodPost, "/v1/auth/register", gin.H{
		"email": "pg@example.com", "password": "correct-horse", "username": "pg",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(r, http.MethodPost, "/v1/auth/login", gin.H{"email": "pg@example.com", "password": "correct-horse"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = call(r, http.MethodPost, "/v1/meeting-types", gin.H{
		"name":        "Strategy session",
		"duration":    60,
		"buffer_time": 15,
		"location":    gin.H{"kind": "phone"},
	}, login.AccessToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var mt struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mt))

	day := time.Now().UTC().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	start := day.Add(10 * time.Hour)

	const attempts = 10
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = call(r, http.MethodPost, "/v1/public/bookings", gin.H{
				"meeting_type_id": mt.ID,
				"attendee":        gin.H{"name": "Guest", "email": "guest@example.com"},
				"start_time":      start,
			}, "").Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, created)

	// Inside the buffer of the held booking.
	w = call(r, http.MethodPost, "/v1/public/bookings", gin.H{
		"meeting_type_id": mt.ID,
		"attendee":        gin.H{"name": "Late", "email": "late@example.com"},
		"start_time":      start.Add(time.Hour),
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}
