package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
	"github.com/nekogravitycat/meeting-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/meeting-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/meeting-booking-backend/internal/invoice"
	invoiceHttp "github.com/nekogravitycat/meeting-booking-backend/internal/invoice/http"
	"github.com/nekogravitycat/meeting-booking-backend/internal/media"
	mediaHttp "github.com/nekogravitycat/meeting-booking-backend/internal/media/http"
	"github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype"
	meetingTypeHttp "github.com/nekogravitycat/meeting-booking-backend/internal/meetingtype/http"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/meeting-booking-backend/internal/profile"
	profileHttp "github.com/nekogravitycat/meeting-booking-backend/internal/profile/http"
	"github.com/nekogravitycat/meeting-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/meeting-booking-backend/internal/user/http"
)

// Config holds what the router needs to build every module's handlers.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Timezone     *time.Location

	UserService        user.Service
	MeetingTypeService meetingtype.Service
	BookingService     booking.Service
	ProfileService     profile.Service
	MediaService       media.Service
	InvoiceService     invoice.Service
	JWTManager         *auth.JWTManager

	// Public booking limiter; nil disables it.
	BookingLimiter *ratelimit.Limiter

	ResolveOwner    meetingTypeHttp.OwnerResolver
	SetProfileImage mediaHttp.ProfileImageSetter
	ResolveIssuer   invoiceHttp.IssuerResolver
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		config.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		config.AllowOrigins = []string{
			"http://localhost:5173", // Vite dev server
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	config.ExposeHeaders = []string{"Content-Disposition"}
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	var limiter gin.HandlerFunc
	if cfg.BookingLimiter != nil {
		limiter = cfg.BookingLimiter.Middleware()
	}

	tz := cfg.Timezone
	if tz == nil {
		tz = time.UTC
	}

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewUserHandler(cfg.UserService, cfg.JWTManager)
	meetingTypeHandler := meetingTypeHttp.NewHandler(cfg.MeetingTypeService, cfg.ResolveOwner)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, tz)
	profileHandler := profileHttp.NewHandler(cfg.ProfileService)
	mediaHandler := mediaHttp.NewHandler(cfg.MediaService, cfg.SetProfileImage)
	invoiceHandler := invoiceHttp.NewHandler(cfg.InvoiceService, cfg.ResolveIssuer)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		meetingTypeHttp.RegisterRoutes(v1, meetingTypeHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, limiter)
		profileHttp.RegisterRoutes(v1, profileHandler, authMiddleware)
		mediaHttp.RegisterRoutes(v1, mediaHandler, authMiddleware)
		invoiceHttp.RegisterRoutes(v1, invoiceHandler, authMiddleware)
	}

	return r
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
