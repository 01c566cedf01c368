package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pos-checkout/internal/cart"
	"pos-checkout/internal/checkout"
	"pos-checkout/internal/payment"
	"pos-checkout/internal/posapi"
	"pos-checkout/internal/pricing"
)

// CheckoutHandler exposes the checkout session workflow to the terminal UI.
type CheckoutHandler struct {
	Sessions *checkout.Store
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/sessions", h.createSession)
	r.Get("/sessions/{id}", h.getSession)
	r.Post("/sessions/{id}/items", h.addItem)
	r.Patch("/sessions/{id}/items", h.updateItem)
	r.Delete("/sessions/{id}/items", h.removeItem)
	r.Post("/sessions/{id}/checkout", h.checkout)
	r.Put("/sessions/{id}/promotion", h.applyPromotion)
	r.Post("/sessions/{id}/payment/method", h.selectMethod)
	r.Post("/sessions/{id}/payment", h.pay)
	r.Patch("/sessions/{id}/status", h.updateStatus)
	r.Post("/sessions/{id}/cancel", h.cancel)
	r.Delete("/sessions/{id}", h.closeSession)
	r.Get("/orders/{id}", h.getOrder)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var apiErr *posapi.APIError
	switch {
	case errors.As(err, &apiErr):
		// backend rejection: surface the server message as-is
		writeJSON(w, apiErr.StatusCode, map[string]string{"error": apiErr.Message})
	case errors.Is(err, cart.ErrStockEmpty),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, pricing.ErrInsufficientCash),
		errors.Is(err, pricing.ErrInvalidCashAmount),
		errors.Is(err, payment.ErrNoMethodSelected),
		errors.Is(err, payment.ErrUnsupportedMethod),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrOrderTerminal),
		errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, checkout.ErrAlreadyOrdered):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, checkout.ErrNoOpenOrder),
		errors.Is(err, payment.ErrUnknownMethod):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "pos backend unreachable"})
	}
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	id := chi.URLParam(r, "id")
	s, ok := h.Sessions.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return s, true
}

func reqCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 10*time.Second)
}

type methodView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type sessionView struct {
	SessionID      string        `json:"session_id"`
	Items          []cart.Line   `json:"items"`
	GrossTotal     int64         `json:"gross_total"`
	DiscountAmount int64         `json:"discount_amount"`
	NetTotal       int64         `json:"net_total"`
	Authoritative  bool          `json:"authoritative"`
	Order          *posapi.Order `json:"order,omitempty"`
	Methods        []methodView  `json:"payment_methods,omitempty"`
	SelectedMethod string        `json:"selected_method,omitempty"`
	QRCodeURL      string        `json:"qr_code_url,omitempty"`
}

func viewOf(s *checkout.Session) sessionView {
	totals := s.Totals()
	v := sessionView{
		SessionID:      s.ID,
		Items:          s.CartItems(),
		GrossTotal:     totals.Gross,
		DiscountAmount: totals.Discount,
		NetTotal:       totals.Net,
		Authoritative:  totals.Authoritative,
		Order:          s.Order(),
		QRCodeURL:      s.QRCodeURL(),
	}
	for _, m := range s.PaymentMethods() {
		v.Methods = append(v.Methods, methodView{ID: m.ID, Name: m.Name, Kind: m.Kind.String()})
	}
	if m := s.SelectedMethod(); m != nil {
		v.SelectedMethod = m.ID
	}
	return v
}

func (h *CheckoutHandler) createSession(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Create()
	writeJSON(w, http.StatusCreated, viewOf(s))
}

func (h *CheckoutHandler) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

type productPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

type variantPayload struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AdditionalPrice int64  `json:"additional_price"`
}

type addItemReq struct {
	Product productPayload  `json:"product"`
	Variant *variantPayload `json:"variant,omitempty"`
}

func (h *CheckoutHandler) addItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Product.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing product"})
		return
	}
	product := cart.Product{ID: req.Product.ID, Name: req.Product.Name, Price: req.Product.Price, Stock: req.Product.Stock}
	var variant *cart.Variant
	if req.Variant != nil {
		variant = &cart.Variant{ID: req.Variant.ID, Name: req.Variant.Name, AdditionalPrice: req.Variant.AdditionalPrice}
	}
	if err := s.AddItem(product, variant); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

type updateItemReq struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Delta     int    `json:"delta"`
}

func (h *CheckoutHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := s.UpdateItemQuantity(req.ProductID, req.VariantID, req.Delta); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *CheckoutHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	s.RemoveItem(req.ProductID, req.VariantID)
	writeJSON(w, http.StatusOK, viewOf(s))
}

type checkoutReq struct {
	Type posapi.OrderType `json:"type"`
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Type != posapi.TypeDineIn && req.Type != posapi.TypeTakeaway {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order type"})
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()
	if _, err := s.Checkout(ctx, req.Type); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(s))
}

type promotionReq struct {
	PromotionID string `json:"promotion_id"`
}

func (h *CheckoutHandler) applyPromotion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req promotionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()
	if _, err := s.ApplyPromotion(ctx, req.PromotionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

type selectMethodReq struct {
	MethodID string `json:"method_id"`
}

func (h *CheckoutHandler) selectMethod(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectMethodReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := s.SelectPaymentMethod(req.MethodID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

type payReq struct {
	CashReceived string `json:"cash_received,omitempty"`
}

type payResp struct {
	sessionView
	Change          int64 `json:"change"`
	AwaitingGateway bool  `json:"awaiting_gateway"`
}

func (h *CheckoutHandler) pay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req payReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()
	res, err := s.Pay(ctx, req.CashReceived)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payResp{
		sessionView:     viewOf(s),
		Change:          res.Change,
		AwaitingGateway: res.AwaitingGateway,
	})
}

type updateStatusReq struct {
	Status posapi.Status `json:"status"`
}

func (h *CheckoutHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if !req.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()
	if _, err := s.UpdateStatus(ctx, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

type cancelReq struct {
	ReasonID string `json:"reason_id"`
	Notes    string `json:"notes,omitempty"`
}

func (h *CheckoutHandler) cancel(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req cancelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ReasonID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing reason_id"})
		return
	}
	ctx, cancel := reqCtx(r)
	defer cancel()
	if err := s.Cancel(ctx, req.ReasonID, req.Notes); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *CheckoutHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := reqCtx(r)
	defer cancel()
	o, err := h.Sessions.Order(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *CheckoutHandler) closeSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.Sessions.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}
