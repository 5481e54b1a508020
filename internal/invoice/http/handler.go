package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/meeting-booking-backend/internal/auth"
	"github.com/nekogravitycat/meeting-booking-backend/internal/invoice"
	"github.com/nekogravitycat/meeting-booking-backend/internal/pkg/response"
)

// IssuerResolver returns the invoice sender and their portfolio URL.
type IssuerResolver func(ctx context.Context, userID string) (invoice.Issuer, string, error)

type Handler struct {
	service       invoice.Service
	resolveIssuer IssuerResolver
}

func NewHandler(service invoice.Service, resolveIssuer IssuerResolver) *Handler {
	return &Handler{service: service, resolveIssuer: resolveIssuer}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	from, portfolioURL, err := h.resolveIssuer(ctx, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	inv, err := h.service.Prepare(ctx, from, req.toDomain())
	if err != nil {
		response.Error(c, err)
		return
	}

	pdf, err := h.service.Render(inv, portfolioURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, inv.Number))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
