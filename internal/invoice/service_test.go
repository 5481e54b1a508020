package invoice

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issued = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func newTestService() Service {
	return NewService(func() time.Time { return issued })
}

func validRequest() CreateRequest {
	return CreateRequest{
		ClientName:  "Acme Studio",
		ClientEmail: "billing@acme.test",
		Service:     "Brand identity package",
		Price:       1250,
		Description: "Logo, colour palette and typography guide.",
	}
}

func TestPrepareDefaults(t *testing.T) {
	inv, err := newTestService().Prepare(context.Background(), Issuer{Name: "Maya", Email: "maya@example.com"}, validRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-1775822400000", inv.Number)
	assert.Equal(t, issued, inv.Date)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, "Maya", inv.From.Name)
}

func TestPrepareKeepsExplicitValues(t *testing.T) {
	req := validRequest()
	req.Number = "2026-007"
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	req.Date = &date
	req.Currency = "eur"

	inv, err := newTestService().Prepare(context.Background(), Issuer{}, req)
	require.NoError(t, err)

	assert.Equal(t, "2026-007", inv.Number)
	assert.Equal(t, date, inv.Date)
	assert.Equal(t, "EUR", inv.Currency)
}

func TestPrepareValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		want   error
	}{
		{"client name", func(r *CreateRequest) { r.ClientName = " " }, ErrClientNameRequired},
		{"client email", func(r *CreateRequest) { r.ClientEmail = "acme" }, ErrInvalidClientEmail},
		{"service", func(r *CreateRequest) { r.Service = "" }, ErrServiceRequired},
		{"zero price", func(r *CreateRequest) { r.Price = 0 }, ErrInvalidPrice},
		{"negative price", func(r *CreateRequest) { r.Price = -10 }, ErrInvalidPrice},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := newTestService().Prepare(context.Background(), Issuer{}, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRenderProducesPDF(t *testing.T) {
	svc := newTestService()
	inv, err := svc.Prepare(context.Background(), Issuer{Name: "Zoë Müller", Email: "zoe@example.com"}, validRequest())
	require.NoError(t, err)

	withQR, err := svc.Render(inv, "https://folio.example/u/zoe")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(withQR, []byte("%PDF-")))

	plain, err := svc.Render(inv, "")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(plain, []byte("%PDF-")))
	assert.Greater(t, len(withQR), len(plain))
}
