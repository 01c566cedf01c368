package posapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	var gotBody createOrderReq
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{
			ID: "ord-1", Status: StatusOpen, Type: TypeDineIn,
			GrossTotal: 60000, NetTotal: 60000,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	items := []CreateOrderItem{
		{ProductID: "p-coffee", Quantity: 2},
		{ProductID: "p-cake", VariantID: "v-large", Quantity: 1},
	}

	o, err := c.CreateOrder(context.Background(), items, TypeDineIn)

	require.NoError(t, err)
	require.Equal(t, "ord-1", o.ID)
	require.Equal(t, StatusOpen, o.Status)
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, items, gotBody.Items)
	require.Equal(t, TypeDineIn, gotBody.Type)
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "stok tidak mencukupi"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.CreateOrder(context.Background(), []CreateOrderItem{{ProductID: "p", Quantity: 1}}, TypeTakeaway)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.Equal(t, "stok tidak mencukupi", apiErr.Message)
}

func TestConfirmManualPayment(t *testing.T) {
	var gotBody confirmPaymentReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/ord-1/payment", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(Order{ID: "ord-1", Status: StatusPaid, NetTotal: 60000})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	o, err := c.ConfirmManualPayment(context.Background(), "ord-1", "pm-cash", 100000)

	require.NoError(t, err)
	require.Equal(t, StatusPaid, o.Status)
	require.Equal(t, "pm-cash", gotBody.PaymentMethodID)
	require.Equal(t, int64(100000), gotBody.CashReceived)
}

func TestInitiateGatewayPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders/ord-1/payment/gateway", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]GatewayAction{
			{Name: "generate-qr-code", Method: "GET", URL: "https://gw.example/qr/abc"},
			{Name: "deeplink-redirect", Method: "GET", URL: "https://gw.example/dl/abc"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	actions, err := c.InitiateGatewayPayment(context.Background(), "ord-1")

	require.NoError(t, err)
	require.Len(t, actions, 2)
	require.Equal(t, "generate-qr-code", actions[0].Name)
}

func TestCancelOrder(t *testing.T) {
	var gotBody cancelOrderReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/ord-1/cancel", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.CancelOrder(context.Background(), "ord-1", "reason-1", "customer left")

	require.NoError(t, err)
	require.Equal(t, "reason-1", gotBody.ReasonID)
	require.Equal(t, "customer left", gotBody.Notes)
}

func TestApplyAndRemovePromotion(t *testing.T) {
	var gotBody applyPromotionReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		o := Order{ID: "ord-1", Status: StatusOpen, GrossTotal: 60000, NetTotal: 60000}
		if gotBody.PromotionID != "" {
			o.AppliedPromotionID = gotBody.PromotionID
			o.DiscountAmount = 10000
			o.NetTotal = 50000
		}
		_ = json.NewEncoder(w).Encode(o)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")

	o, err := c.ApplyPromotion(context.Background(), "ord-1", "promo-7")
	require.NoError(t, err)
	require.Equal(t, int64(50000), o.NetTotal)
	require.Equal(t, "promo-7", o.AppliedPromotionID)

	o, err = c.ApplyPromotion(context.Background(), "ord-1", "")
	require.NoError(t, err)
	require.Equal(t, int64(60000), o.NetTotal)
	require.Empty(t, o.AppliedPromotionID)
}

func TestListPaymentMethods(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment-methods", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]PaymentMethod{
			{ID: "pm-1", Name: "Cash"},
			{ID: "pm-2", Name: "QRIS Statis"},
			{ID: "pm-3", Name: "QRIS"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	methods, err := c.ListPaymentMethods(context.Background())

	require.NoError(t, err)
	require.Len(t, methods, 3)
}

func TestTransportFailureWrapped(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "")
	_, err := c.GetOrder(context.Background(), "ord-1")
	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr), "transport failures are not APIErrors")
}
