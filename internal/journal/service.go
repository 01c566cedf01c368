package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"pos-checkout/internal/events"
	kafkax "pos-checkout/internal/kafka"
)

const (
	// Dedup event processing: dedup:journal:{event_id}
	keyDedup = "dedup:journal:%s"
)

var ttlDedup = 48 * time.Hour

// Service consumes checkout events and appends them to the sales journal.
type Service struct {
	Repo  *Repo
	Redis *redis.Client
	Log   zerolog.Logger
}

// HandleCheckoutEvent is installed as the consumer handler for both
// checkout topics.
func (s *Service) HandleCheckoutEvent(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	dkey := fmt.Sprintf(keyDedup, env.EventID)
	if n, err := s.Redis.Exists(ctx, dkey).Result(); err == nil && n > 0 {
		return nil
	}

	var entry Entry
	switch env.EventType {
	case events.EventCheckoutCompleted:
		p, err := kafkax.UnwrapPayload[events.CheckoutCompletedPayload](env.Payload)
		if err != nil {
			return err
		}
		entry = Entry{
			OrderID:         p.OrderID,
			SessionID:       p.SessionID,
			Outcome:         "completed",
			OrderType:       p.OrderType,
			PaymentMethodID: p.PaymentMethodID,
			PaymentKind:     p.PaymentKind,
			GrossTotal:      p.GrossTotal,
			DiscountAmount:  p.DiscountAmount,
			NetTotal:        p.NetTotal,
			CashReceived:    p.CashReceived,
			ChangeDue:       p.ChangeDue,
			OccurredAt:      env.OccurredAt,
		}
	case events.EventCheckoutCancelled:
		p, err := kafkax.UnwrapPayload[events.CheckoutCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		entry = Entry{
			OrderID:    p.OrderID,
			SessionID:  p.SessionID,
			Outcome:    "cancelled",
			ReasonID:   p.ReasonID,
			Notes:      p.Notes,
			OccurredAt: env.OccurredAt,
		}
	default:
		return nil // ignore
	}

	if err := s.Repo.Append(ctx, entry); err != nil {
		return err
	}
	_ = s.Redis.Set(ctx, dkey, "1", ttlDedup).Err()

	s.Log.Info().
		Str("order_id", entry.OrderID).
		Str("outcome", entry.Outcome).
		Int64("net_total", entry.NetTotal).
		Msg("journal entry appended")
	return nil
}
