package posapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the POS backend API. All business logic (pricing,
// promotion evaluation, stock deduction, payment state) lives behind it;
// the terminal only mirrors what it returns.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type createOrderReq struct {
	Items []CreateOrderItem `json:"items"`
	Type  OrderType         `json:"type"`
}

type applyPromotionReq struct {
	PromotionID string `json:"promotion_id,omitempty"`
}

type confirmPaymentReq struct {
	PaymentMethodID string `json:"payment_method_id"`
	CashReceived    int64  `json:"cash_received"`
}

type cancelOrderReq struct {
	ReasonID string `json:"reason_id"`
	Notes    string `json:"notes,omitempty"`
}

type updateStatusReq struct {
	Status Status `json:"status"`
}

// CreateOrder submits the cart lines and order type; the backend answers
// with a fresh order in status open.
func (c *Client) CreateOrder(ctx context.Context, items []CreateOrderItem, typ OrderType) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/orders", createOrderReq{Items: items, Type: typ}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApplyPromotion attaches promotionID to the order, or removes the applied
// promotion when promotionID is empty. Idempotent per last-applied value.
func (c *Client) ApplyPromotion(ctx context.Context, orderID, promotionID string) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+orderID+"/promotion", applyPromotionReq{PromotionID: promotionID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmManualPayment settles cash and static-QRIS payments. The caller
// validates cashReceived against the net total before calling.
func (c *Client) ConfirmManualPayment(ctx context.Context, orderID, methodID string, cashReceived int64) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/orders/"+orderID+"/payment", confirmPaymentReq{PaymentMethodID: methodID, CashReceived: cashReceived}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitiateGatewayPayment asks the gateway for a per-transaction payment
// action list. It does not confirm anything; the order advances to paid
// out-of-band and is observed via polling.
func (c *Client) InitiateGatewayPayment(ctx context.Context, orderID string) ([]GatewayAction, error) {
	var out []GatewayAction
	if err := c.do(ctx, http.MethodPost, "/orders/"+orderID+"/payment/gateway", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID, reasonID, notes string) error {
	return c.do(ctx, http.MethodPost, "/orders/"+orderID+"/cancel", cancelOrderReq{ReasonID: reasonID, Notes: notes}, nil)
}

func (c *Client) UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPatch, "/orders/"+orderID+"/status", updateStatusReq{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	var out []PaymentMethod
	if err := c.do(ctx, http.MethodGet, "/payment-methods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("pos backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&e)
	msg := e.Message
	if msg == "" {
		msg = e.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
