package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"pos-checkout/internal/cart"
	"pos-checkout/internal/events"
	kafkax "pos-checkout/internal/kafka"
	"pos-checkout/internal/ordercache"
	"pos-checkout/internal/payment"
	"pos-checkout/internal/posapi"
	"pos-checkout/internal/pricing"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNoOpenOrder       = errors.New("no open order for this session")
	ErrOrderTerminal     = errors.New("order is already paid or cancelled")
	ErrAlreadyOrdered    = errors.New("session already has an order")
	ErrInvalidTransition = errors.New("status transition not permitted")
)

// Deps are the collaborators a session needs; the store injects them.
type Deps struct {
	Client    *posapi.Client
	Cache     *ordercache.Cache
	Completed events.Publisher
	Cancelled events.Publisher
	Service   string
	Log       zerolog.Logger

	// PollInterval drives the automatic watcher started after a dynamic
	// QRIS payment is initiated; zero disables it.
	PollInterval time.Duration

	// BaseCtx bounds auto-started watchers so service shutdown stops them;
	// nil falls back to context.Background().
	BaseCtx context.Context
}

// Session owns one cart and at most one backend order. The cart is local
// transient state; the order copy is a cache of backend truth, refreshed
// after every mutation and by the payment-dialog watcher.
type Session struct {
	ID string

	mu         sync.Mutex
	cart       *cart.Cart
	order      *posapi.Order
	totals     pricing.Totals
	dispatcher *payment.Dispatcher
	completed  bool
	watch      *Watcher

	deps Deps
}

func NewSession(deps Deps, methods []posapi.PaymentMethod, staticQRISID string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		cart:       cart.New(),
		dispatcher: payment.NewDispatcher(deps.Client, methods, staticQRISID),
		deps:       deps,
	}
}

// --- cart ops (pre-checkout) ---

func (s *Session) AddItem(p cart.Product, v *cart.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Add(p, v); err != nil {
		return err
	}
	s.refreshLocalTotals()
	return nil
}

func (s *Session) UpdateItemQuantity(productID, variantID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.UpdateQuantity(productID, variantID, delta); err != nil {
		return err
	}
	s.refreshLocalTotals()
	return nil
}

func (s *Session) RemoveItem(productID, variantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID, variantID)
	s.refreshLocalTotals()
}

func (s *Session) CartItems() []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

func (s *Session) refreshLocalTotals() {
	if s.order == nil {
		s.totals = pricing.Local(s.cart.Total())
	}
}

// --- order lifecycle ---

// Checkout creates the backend order from the cart. The cart is kept on
// failure so the cashier can retry.
func (s *Session) Checkout(ctx context.Context, typ posapi.OrderType) (*posapi.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order != nil && !s.order.Terminal() {
		return nil, ErrAlreadyOrdered
	}
	if s.cart.Len() == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]posapi.CreateOrderItem, 0, s.cart.Len())
	for _, l := range s.cart.Items() {
		items = append(items, posapi.CreateOrderItem{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
		})
	}

	order, err := s.deps.Client.CreateOrder(ctx, items, typ)
	if err != nil {
		return nil, err
	}
	s.resetOrderStateLocked()
	s.adoptLocked(ctx, order)
	return order, nil
}

// resetOrderStateLocked drops settlement state left over from a previous
// order, so a reused session completes and publishes the new one normally.
func (s *Session) resetOrderStateLocked() {
	s.completed = false
	s.dispatcher.ResetQR()
	if w := s.watch; w != nil {
		s.watch = nil
		w.Stop()
	}
}

// ApplyPromotion attaches (or with empty id removes) a promotion; the
// backend recomputes totals and its figures win.
func (s *Session) ApplyPromotion(ctx context.Context, promotionID string) (*posapi.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return nil, ErrNoOpenOrder
	}
	if s.order.Terminal() {
		return nil, ErrOrderTerminal
	}
	order, err := s.deps.Client.ApplyPromotion(ctx, s.order.ID, promotionID)
	if err != nil {
		return nil, err
	}
	s.adoptLocked(ctx, order)
	return order, nil
}

// SelectPaymentMethod switches the active method, dropping any generated
// dynamic-QR payload.
func (s *Session) SelectPaymentMethod(methodID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatcher.Select(methodID)
}

func (s *Session) PaymentMethods() []payment.Method {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatcher.Methods()
}

// Pay dispatches the selected method against the current order. Cash and
// static QRIS settle synchronously; dynamic QRIS returns the QR payload and
// the order stays non-terminal until polling observes paid.
func (s *Session) Pay(ctx context.Context, cashInput string) (payment.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return payment.Result{}, ErrNoOpenOrder
	}
	if s.order.Terminal() {
		return payment.Result{}, ErrOrderTerminal
	}

	res, err := s.dispatcher.Pay(ctx, s.order.ID, s.totals.Net, cashInput)
	if err != nil {
		return payment.Result{}, err
	}
	if res.Order != nil {
		s.adoptLocked(ctx, res.Order)
		if res.Order.Status == posapi.StatusPaid {
			s.completeLocked(res)
		}
	}
	if res.AwaitingGateway && s.deps.PollInterval > 0 && s.watch == nil {
		base := s.deps.BaseCtx
		if base == nil {
			base = context.Background()
		}
		s.watch = s.Watch(base, s.deps.PollInterval, nil)
	}
	return res, nil
}

// StopWatching halts the payment-dialog watcher, if one is running. Safe to
// call at any time; the store calls it when a session is removed.
func (s *Session) StopWatching() {
	s.mu.Lock()
	w := s.watch
	s.watch = nil
	s.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}

// Cancel aborts a non-terminal order. The UI never offers it once the order
// is paid or already cancelled.
func (s *Session) Cancel(ctx context.Context, reasonID, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return ErrNoOpenOrder
	}
	if s.order.Terminal() {
		return ErrOrderTerminal
	}

	if err := s.deps.Client.CancelOrder(ctx, s.order.ID, reasonID, notes); err != nil {
		return err
	}
	s.order.Status = posapi.StatusCancelled
	if s.deps.Cache != nil {
		_ = s.deps.Cache.InvalidateOrder(ctx, s.order.ID)
	}
	s.publishCancelled(reasonID, notes)
	return nil
}

// Refresh re-fetches the order; the polled state is authoritative. If the
// backend reports paid out of band (dynamic QRIS), the session completes
// instead of erroring.
func (s *Session) Refresh(ctx context.Context) (*posapi.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return nil, ErrNoOpenOrder
	}
	order, err := s.deps.Client.GetOrder(ctx, s.order.ID)
	if err != nil {
		return nil, err
	}
	s.adoptLocked(ctx, order)
	if order.IsPaid || order.Status == posapi.StatusPaid {
		s.completeLocked(payment.Result{Order: order, CashReceived: order.NetTotal})
	}
	return order, nil
}

// UpdateStatus requests a kitchen-side transition (open -> in_progress ->
// served). Transitions the map forbids are rejected before the call.
func (s *Session) UpdateStatus(ctx context.Context, next posapi.Status) (*posapi.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return nil, ErrNoOpenOrder
	}
	if !posapi.CanTransition(s.order.Status, next) {
		return nil, ErrInvalidTransition
	}
	order, err := s.deps.Client.UpdateStatus(ctx, s.order.ID, next)
	if err != nil {
		return nil, err
	}
	s.adoptLocked(ctx, order)
	return order, nil
}

func (s *Session) Order() *posapi.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.order == nil {
		return nil
	}
	o := *s.order
	return &o
}

func (s *Session) Totals() pricing.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

func (s *Session) QRCodeURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatcher.QRCodeURL()
}

func (s *Session) SelectedMethod() *payment.Method {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatcher.Selected()
}

// adoptLocked replaces the local order copy with backend truth and keeps
// the cache in step: invalidate, then store the fresh detail.
func (s *Session) adoptLocked(ctx context.Context, order *posapi.Order) {
	s.order = order
	s.totals = pricing.Merge(
		pricing.Local(s.cart.Total()),
		pricing.Server(order.GrossTotal, order.DiscountAmount, order.NetTotal),
	)
	if s.deps.Cache != nil {
		_ = s.deps.Cache.InvalidateOrder(ctx, order.ID)
		if err := s.deps.Cache.PutOrder(ctx, order); err != nil {
			s.deps.Log.Warn().Err(err).Str("order_id", order.ID).Msg("order cache write failed")
		}
	}
}

// completeLocked fires once per session: publish the completed event and
// destroy the cart (checkout completion ends the cart's life).
func (s *Session) completeLocked(res payment.Result) {
	if s.completed {
		return
	}
	s.completed = true
	s.cart.Clear()
	s.publishCompleted(res)
}

func (s *Session) publishCompleted(res payment.Result) {
	if s.deps.Completed == nil || s.order == nil {
		return
	}
	kind := payment.KindOther
	methodID := ""
	if m := s.dispatcher.Selected(); m != nil {
		kind = m.Kind
		methodID = m.ID
	}
	items := make([]events.CheckoutItem, 0, len(s.order.Items))
	for _, it := range s.order.Items {
		items = append(items, events.CheckoutItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	env := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventCheckoutCompleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.deps.Service,
		CorrelationID: s.order.ID,
		Payload: kafkax.MustMarshal(events.CheckoutCompletedPayload{
			OrderID:         s.order.ID,
			SessionID:       s.ID,
			OrderType:       string(s.order.Type),
			PaymentMethodID: methodID,
			PaymentKind:     kind.String(),
			Items:           items,
			GrossTotal:      s.totals.Gross,
			DiscountAmount:  s.totals.Discount,
			NetTotal:        s.totals.Net,
			CashReceived:    res.CashReceived,
			ChangeDue:       res.Change,
		}),
	}
	s.deps.Completed.Publish(events.PartitionKey(s.order.ID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventCheckoutCompleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Session) publishCancelled(reasonID, notes string) {
	if s.deps.Cancelled == nil || s.order == nil {
		return
	}
	env := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventCheckoutCancelled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.deps.Service,
		CorrelationID: s.order.ID,
		Payload: kafkax.MustMarshal(events.CheckoutCancelledPayload{
			OrderID:   s.order.ID,
			SessionID: s.ID,
			ReasonID:  reasonID,
			Notes:     notes,
		}),
	}
	s.deps.Cancelled.Publish(events.PartitionKey(s.order.ID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventCheckoutCancelled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
