package payment

import (
	"strings"

	"pos-checkout/internal/posapi"
)

// Kind classifies a payment method once, when the method list is loaded,
// so no call site re-derives behavior from name strings.
type Kind int

const (
	KindOther Kind = iota
	KindCash
	KindStaticQR
	KindDynamicQR
)

func (k Kind) String() string {
	switch k {
	case KindCash:
		return "cash"
	case KindStaticQR:
		return "static_qr"
	case KindDynamicQR:
		return "dynamic_qr"
	default:
		return "other"
	}
}

type Method struct {
	posapi.PaymentMethod
	Kind Kind
}

// Resolve classifies the backend's method list. The well-known static QRIS
// id wins over name matching, since static QRIS methods are also named
// "QRIS" something.
func Resolve(methods []posapi.PaymentMethod, staticQRISID string) []Method {
	out := make([]Method, 0, len(methods))
	for _, m := range methods {
		out = append(out, Method{PaymentMethod: m, Kind: resolveKind(m, staticQRISID)})
	}
	return out
}

func resolveKind(m posapi.PaymentMethod, staticQRISID string) Kind {
	if staticQRISID != "" && m.ID == staticQRISID {
		return KindStaticQR
	}
	name := strings.ToLower(m.Name)
	switch {
	case strings.Contains(name, "cash"), strings.Contains(name, "tunai"):
		return KindCash
	case strings.Contains(name, "qris"), strings.Contains(name, "qr"):
		return KindDynamicQR
	default:
		return KindOther
	}
}
