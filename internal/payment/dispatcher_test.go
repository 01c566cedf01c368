package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"pos-checkout/internal/posapi"
	"pos-checkout/internal/pricing"
)

var testMethods = []posapi.PaymentMethod{
	{ID: "pm-cash", Name: "Cash"},
	{ID: "pm-static", Name: "QRIS Statis"},
	{ID: "pm-dyn", Name: "QRIS"},
	{ID: "pm-card", Name: "Debit Card"},
}

type backendCall struct {
	PaymentMethodID string `json:"payment_method_id"`
	CashReceived    int64  `json:"cash_received"`
}

func newBackend(t *testing.T, hits *atomic.Int64, lastConfirm *backendCall) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/orders/ord-1/payment":
			require.NoError(t, json.NewDecoder(r.Body).Decode(lastConfirm))
			_ = json.NewEncoder(w).Encode(posapi.Order{ID: "ord-1", Status: posapi.StatusPaid, NetTotal: 60000})
		case "/orders/ord-1/payment/gateway":
			_ = json.NewEncoder(w).Encode([]posapi.GatewayAction{
				{Name: "generate-qr-code", Method: "GET", URL: "https://gw.example/qr/ord-1"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestPayCashInsufficientBlocksBeforeNetwork(t *testing.T) {
	var hits atomic.Int64
	var confirm backendCall
	srv := newBackend(t, &hits, &confirm)
	defer srv.Close()

	d := NewDispatcher(posapi.NewClient(srv.URL, ""), testMethods, "pm-static")
	require.NoError(t, d.Select("pm-cash"))

	_, err := d.Pay(context.Background(), "ord-1", 60000, "50000")

	require.ErrorIs(t, err, pricing.ErrInsufficientCash)
	require.Equal(t, int64(0), hits.Load(), "insufficient cash must never reach the backend")
}

func TestPayCashComputesChange(t *testing.T) {
	var hits atomic.Int64
	var confirm backendCall
	srv := newBackend(t, &hits, &confirm)
	defer srv.Close()

	d := NewDispatcher(posapi.NewClient(srv.URL, ""), testMethods, "pm-static")
	require.NoError(t, d.Select("pm-cash"))

	res, err := d.Pay(context.Background(), "ord-1", 60000, "100000")

	require.NoError(t, err)
	require.Equal(t, int64(40000), res.Change)
	require.Equal(t, int64(100000), res.CashReceived)
	require.Equal(t, posapi.StatusPaid, res.Order.Status)
	require.False(t, res.AwaitingGateway)
	require.Equal(t, "pm-cash", confirm.PaymentMethodID)
	require.Equal(t, int64(100000), confirm.CashReceived)
}

func TestPayCashRejectsGarbageInput(t *testing.T) {
	d := NewDispatcher(posapi.NewClient("http://unused", ""), testMethods, "pm-static")
	require.NoError(t, d.Select("pm-cash"))

	_, err := d.Pay(context.Background(), "ord-1", 60000, "")
	require.ErrorIs(t, err, pricing.ErrInvalidCashAmount)
}

func TestPayStaticQRConfirmsWithNetTotal(t *testing.T) {
	var hits atomic.Int64
	var confirm backendCall
	srv := newBackend(t, &hits, &confirm)
	defer srv.Close()

	d := NewDispatcher(posapi.NewClient(srv.URL, ""), testMethods, "pm-static")
	require.NoError(t, d.Select("pm-static"))

	res, err := d.Pay(context.Background(), "ord-1", 60000, "")

	require.NoError(t, err)
	require.Equal(t, int64(0), res.Change)
	require.Equal(t, posapi.StatusPaid, res.Order.Status)
	require.Equal(t, "pm-static", confirm.PaymentMethodID)
	require.Equal(t, int64(60000), confirm.CashReceived)
}

func TestPayDynamicQRWaitsForGateway(t *testing.T) {
	var hits atomic.Int64
	var confirm backendCall
	srv := newBackend(t, &hits, &confirm)
	defer srv.Close()

	d := NewDispatcher(posapi.NewClient(srv.URL, ""), testMethods, "pm-static")
	require.NoError(t, d.Select("pm-dyn"))

	res, err := d.Pay(context.Background(), "ord-1", 60000, "")

	require.NoError(t, err)
	require.True(t, res.AwaitingGateway)
	require.Nil(t, res.Order)
	require.Equal(t, "https://gw.example/qr/ord-1", res.QRCodeURL)
	require.Equal(t, "https://gw.example/qr/ord-1", d.QRCodeURL())
}

func TestSelectResetsQRPayload(t *testing.T) {
	var hits atomic.Int64
	var confirm backendCall
	srv := newBackend(t, &hits, &confirm)
	defer srv.Close()

	d := NewDispatcher(posapi.NewClient(srv.URL, ""), testMethods, "pm-static")
	require.NoError(t, d.Select("pm-dyn"))
	_, err := d.Pay(context.Background(), "ord-1", 60000, "")
	require.NoError(t, err)
	require.NotEmpty(t, d.QRCodeURL())

	require.NoError(t, d.Select("pm-cash"))

	require.Empty(t, d.QRCodeURL())
}

func TestPayWithoutSelection(t *testing.T) {
	d := NewDispatcher(posapi.NewClient("http://unused", ""), testMethods, "")
	_, err := d.Pay(context.Background(), "ord-1", 60000, "")
	require.ErrorIs(t, err, ErrNoMethodSelected)
}

func TestPayUnsupportedKind(t *testing.T) {
	d := NewDispatcher(posapi.NewClient("http://unused", ""), testMethods, "pm-static")
	require.NoError(t, d.Select("pm-card"))
	_, err := d.Pay(context.Background(), "ord-1", 60000, "")
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestSelectUnknownMethod(t *testing.T) {
	d := NewDispatcher(posapi.NewClient("http://unused", ""), testMethods, "")
	require.ErrorIs(t, d.Select("pm-nope"), ErrUnknownMethod)
}
