package invoice

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const defaultCurrency = "USD"

type CreateRequest struct {
	Number      string // generated when empty
	Date        *time.Time
	ClientName  string
	ClientEmail string
	Service     string
	Price       float64
	Currency    string
	Description string
}

type Service interface {
	// Prepare validates the request and fills in number, date and currency defaults.
	Prepare(ctx context.Context, from Issuer, req CreateRequest) (*Invoice, error)
	// Render produces the invoice PDF. A non-empty portfolioURL is printed with a QR code.
	Render(inv *Invoice, portfolioURL string) ([]byte, error)
}

type service struct {
	now func() time.Time
}

// NewService builds the invoice generator. now defaults to time.Now.
func NewService(now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{now: now}
}

func (s *service) Prepare(ctx context.Context, from Issuer, req CreateRequest) (*Invoice, error) {
	inv := &Invoice{
		Number:      strings.TrimSpace(req.Number),
		ClientName:  strings.TrimSpace(req.ClientName),
		ClientEmail: strings.TrimSpace(req.ClientEmail),
		Service:     strings.TrimSpace(req.Service),
		Price:       req.Price,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		Description: strings.TrimSpace(req.Description),
		From:        from,
	}

	if inv.ClientName == "" {
		return nil, ErrClientNameRequired
	}
	if addr, err := mail.ParseAddress(inv.ClientEmail); err != nil || addr.Address != inv.ClientEmail {
		return nil, ErrInvalidClientEmail
	}
	if inv.Service == "" {
		return nil, ErrServiceRequired
	}
	if inv.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	now := s.now()
	if inv.Number == "" {
		inv.Number = fmt.Sprintf("INV-%d", now.UnixMilli())
	}
	if req.Date != nil {
		inv.Date = *req.Date
	} else {
		inv.Date = now
	}
	if inv.Currency == "" {
		inv.Currency = defaultCurrency
	}
	return inv, nil
}

func (s *service) Render(inv *Invoice, portfolioURL string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.SetAuthor(inv.From.Name, true)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, "INVOICE", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr("Invoice #: "+inv.Number), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+inv.Date.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Parties
	top := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(85, 6, "From", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(85, 6, tr(inv.From.Name+"\n"+inv.From.Email), "", "L", false)

	pdf.SetXY(110, top)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(80, 6, "Bill to", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(80, 6, tr(inv.ClientName+"\n"+inv.ClientEmail), "", "L", false)
	pdf.Ln(10)

	// Line item
	pdf.SetFillColor(240, 240, 245)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Service", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 8, "Amount", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	amount := fmt.Sprintf("%s %.2f", inv.Currency, inv.Price)
	pdf.CellFormat(120, 8, tr(inv.Service), "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, amount, "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(50, 8, amount, "1", 1, "R", false, 0, "")

	if inv.Description != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(inv.Description), "", "L", false)
	}

	if portfolioURL != "" {
		png, err := qrcode.Encode(portfolioURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("encode portfolio qr code failed: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "png"}
		pdf.RegisterImageOptionsReader("portfolio-qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("portfolio-qr", 160, 245, 30, 30, false, opts, 0, "")
		pdf.SetXY(20, 262)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(135, 5, tr("Portfolio: "+portfolioURL), "", 0, "L", false, 0, portfolioURL)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf failed: %w", err)
	}
	return buf.Bytes(), nil
}
