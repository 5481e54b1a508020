package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nekogravitycat/meeting-booking-backend/internal/api"
	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
	"github.com/nekogravitycat/meeting-booking-backend/internal/booking"
	"github.com/nekogravitycat/meeting-booking-backend/internal/invoice"
	"github.com/nekogravitycat/meeting-booking-backend/internal/media"
	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
	"github.com/nekogravitycat/meeting-booking-backend/internal/notify"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/meeting-booking-backend/internal/profile"
	"github.com/nekogravitycat/meeting-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	// DBPool selects the postgres repositories; nil keeps everything in memory.
	DBPool     *pgxpool.Pool
	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	Slots    booking.SlotConfig
	Timezone *time.Location

	// Redis is optional; events are only logged without it.
	Redis           *redis.Client
	RedisChannel    string
	NotifyQueueSize int

	PublicBaseURL        string
	MediaDir             string
	BookingRatePerMinute int
	Logger               *slog.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Dispatcher *notify.Dispatcher
}

type repositories struct {
	users        user.Repository
	meetingTypes meetingtype.Repository
	bookings     booking.Repository
	profiles     profile.Repository
	media        media.Repository
}

func newRepositories(pool *pgxpool.Pool) repositories {
	if pool == nil {
		return repositories{
			users:        user.NewMemoryRepository(),
			meetingTypes: meetingtype.NewMemoryRepository(),
			bookings:     booking.NewMemoryRepository(),
			profiles:     profile.NewMemoryRepository(),
			media:        media.NewMemoryRepository(),
		}
	}
	return repositories{
		users:        user.NewPgxRepository(pool),
		meetingTypes: meetingtype.NewPgxRepository(pool),
		bookings:     booking.NewPgxRepository(pool),
		profiles:     profile.NewPgxRepository(pool),
		media:        media.NewPgxRepository(pool),
	}
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	repos := newRepositories(cfg.DBPool)

	fileStore, err := storage.NewLocalStorage(cfg.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("init media storage: %w", err)
	}

	// Notifications: always logged, optionally published to redis, delivered off the request path.
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	if cfg.Redis != nil {
		notifiers = append(notifiers, notify.NewRedisPublisher(cfg.Redis, cfg.RedisChannel))
	}
	dispatcher := notify.NewDispatcher(notifiers, cfg.NotifyQueueSize, logger)

	// User Module
	userService := user.NewService(repos.users, passwordHasher, logger)

	// Meeting Type Module; deletes are blocked while bookings are active.
	meetingTypeService := meetingtype.NewService(repos.meetingTypes, repos.bookings)

	// Booking Module
	bookingService := booking.NewService(repos.bookings, meetingTypeService, dispatcher, logger, booking.Config{
		Slots:    cfg.Slots,
		Location: cfg.Timezone,
	})

	// Profile Module
	profileService := profile.NewService(repos.profiles, userService, cfg.PublicBaseURL, logger)

	// Media Module
	mediaService := media.NewService(repos.media, fileStore, logger)

	// Invoice Module
	invoiceService := invoice.NewService(nil)

	var limiter *ratelimit.Limiter
	if cfg.BookingRatePerMinute > 0 {
		limiter = ratelimit.New(cfg.BookingRatePerMinute, cfg.BookingRatePerMinute)
	}

	// API Router Config
	routerParams := api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		Timezone:           cfg.Timezone,
		UserService:        userService,
		MeetingTypeService: meetingTypeService,
		BookingService:     bookingService,
		ProfileService:     profileService,
		MediaService:       mediaService,
		InvoiceService:     invoiceService,
		JWTManager:         jwtManager,
		BookingLimiter:     limiter,

		ResolveOwner: func(ctx context.Context, username string) (string, error) {
			u, err := userService.GetByUsername(ctx, username)
			if err != nil {
				return "", err
			}
			if !u.IsActive {
				return "", user.ErrNotFound
			}
			return u.ID, nil
		},
		SetProfileImage: func(ctx context.Context, userID, mediaID string) error {
			_, err := profileService.Upsert(ctx, userID, profile.Patch{ProfileImageID: &mediaID})
			return err
		},
		ResolveIssuer: func(ctx context.Context, userID string) (invoice.Issuer, string, error) {
			u, err := userService.GetByID(ctx, userID)
			if err != nil {
				return invoice.Issuer{}, "", err
			}
			return invoice.Issuer{Name: u.Name(), Email: u.Email}, profileService.PortfolioURL(u.Username), nil
		},
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Dispatcher: dispatcher,
	}, nil
}
