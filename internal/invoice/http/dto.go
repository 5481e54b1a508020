package http

import (
	"time"

	"github.com/nekogravitycat/meeting-booking-backend/internal/invoice"
)

type CreateInvoiceRequest struct {
	Number      string     `json:"number"`
	Date        *time.Time `json:"date"`
	ClientName  string     `json:"client_name" binding:"required"`
	ClientEmail string     `json:"client_email" binding:"required,email"`
	Service     string     `json:"service" binding:"required"`
	Price       float64    `json:"price" binding:"required,gt=0"`
	Currency    string     `json:"currency" binding:"omitempty,len=3"`
	Description string     `json:"description"`
}

func (r CreateInvoiceRequest) toDomain() invoice.CreateRequest {
	return invoice.CreateRequest{
		Number:      r.Number,
		Date:        r.Date,
		ClientName:  r.ClientName,
		ClientEmail: r.ClientEmail,
		Service:     r.Service,
		Price:       r.Price,
		Currency:    r.Currency,
		Description: r.Description,
	}
}
