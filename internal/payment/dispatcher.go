package payment

import (
	"context"
	"errors"

	"pos-checkout/internal/posapi"
	"pos-checkout/internal/pricing"
)

var (
	ErrNoMethodSelected  = errors.New("no payment method selected")
	ErrUnknownMethod     = errors.New("unknown payment method")
	ErrUnsupportedMethod = errors.New("payment method has no terminal flow")
	ErrNoQRCodeAction    = errors.New("gateway returned no QR code action")
)

// Result is the outcome of one Pay call. For cash and static QRIS the order
// is settled synchronously; for dynamic QRIS the terminal displays the QR
// and waits for polling to observe the paid status.
type Result struct {
	Order           *posapi.Order
	CashReceived    int64
	Change          int64
	QRCodeURL       string
	AwaitingGateway bool
}

// Dispatcher owns the selected payment method and any generated dynamic-QR
// payload for one checkout session.
type Dispatcher struct {
	client   *posapi.Client
	methods  []Method
	selected *Method
	qrURL    string
}

func NewDispatcher(client *posapi.Client, methods []posapi.PaymentMethod, staticQRISID string) *Dispatcher {
	return &Dispatcher{client: client, methods: Resolve(methods, staticQRISID)}
}

func (d *Dispatcher) Methods() []Method { return d.methods }

// Select switches the active method. Any previously generated QR payload is
// dropped; state never carries across method switches.
func (d *Dispatcher) Select(methodID string) error {
	for i := range d.methods {
		if d.methods[i].ID == methodID {
			d.selected = &d.methods[i]
			d.qrURL = ""
			return nil
		}
	}
	return ErrUnknownMethod
}

func (d *Dispatcher) Selected() *Method { return d.selected }

// ResetQR drops a generated QR payload without touching the selection; the
// session calls it when a new order replaces a settled one.
func (d *Dispatcher) ResetQR() { d.qrURL = "" }

func (d *Dispatcher) QRCodeURL() string { return d.qrURL }

// Pay runs the selected method's flow against the order.
//
// Cash validates cashInput >= net before any network call; static QRIS is
// treated as good as cash and confirmed with cash_received = net; dynamic
// QRIS only generates the gateway QR, completion arrives via polling.
func (d *Dispatcher) Pay(ctx context.Context, orderID string, net int64, cashInput string) (Result, error) {
	if d.selected == nil {
		return Result{}, ErrNoMethodSelected
	}

	switch d.selected.Kind {
	case KindCash:
		cash, err := pricing.ParseCashAmount(cashInput)
		if err != nil {
			return Result{}, err
		}
		change, err := pricing.ChangeDue(cash, net)
		if err != nil {
			return Result{}, err
		}
		order, err := d.client.ConfirmManualPayment(ctx, orderID, d.selected.ID, cash)
		if err != nil {
			return Result{}, err
		}
		return Result{Order: order, CashReceived: cash, Change: change}, nil

	case KindStaticQR:
		order, err := d.client.ConfirmManualPayment(ctx, orderID, d.selected.ID, net)
		if err != nil {
			return Result{}, err
		}
		return Result{Order: order, CashReceived: net}, nil

	case KindDynamicQR:
		actions, err := d.client.InitiateGatewayPayment(ctx, orderID)
		if err != nil {
			return Result{}, err
		}
		url, ok := qrCodeURL(actions)
		if !ok {
			return Result{}, ErrNoQRCodeAction
		}
		d.qrURL = url
		return Result{QRCodeURL: url, AwaitingGateway: true}, nil

	default:
		return Result{}, ErrUnsupportedMethod
	}
}

func qrCodeURL(actions []posapi.GatewayAction) (string, bool) {
	for _, a := range actions {
		if a.Name == "generate-qr-code" {
			return a.URL, true
		}
	}
	// fall back to the first action with a URL
	for _, a := range actions {
		if a.URL != "" {
			return a.URL, true
		}
	}
	return "", false
}
