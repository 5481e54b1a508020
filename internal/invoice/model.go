package invoice

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/apperror"
)

var (
	ErrClientNameRequired = apperror.New(http.StatusBadRequest, "client name is required")
	ErrInvalidClientEmail = apperror.New(http.StatusBadRequest, "client email is invalid")
	ErrServiceRequired    = apperror.New(http.StatusBadRequest, "service is required")
	ErrInvalidPrice       = apperror.New(http.StatusBadRequest, "price must be greater than zero")
)

// Issuer is the freelancer sending the invoice.
type Issuer struct {
	Name  string
	Email string
}

type Invoice struct {
	Number      string
	Date        time.Time
	ClientName  string
	ClientEmail string
	Service     string
	Price       float64
	Currency    string
	Description string
	From        Issuer
}
