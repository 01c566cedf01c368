package journal

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one row of the sales journal: a completed or cancelled checkout
// as observed by the terminal, kept for end-of-day reconciliation against
// the backend's own reports.
type Entry struct {
	OrderID         string
	SessionID       string
	Outcome         string // completed | cancelled
	OrderType       string
	PaymentMethodID string
	PaymentKind     string
	GrossTotal      int64
	DiscountAmount  int64
	NetTotal        int64
	CashReceived    int64
	ChangeDue       int64
	ReasonID        string
	Notes           string
	OccurredAt      time.Time
}

type Repo struct{ DB *pgxpool.Pool }

// Append is idempotent per (order_id, outcome): event redelivery must not
// double-count a sale.
func (r *Repo) Append(ctx context.Context, e Entry) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO sales_journal(
			order_id, session_id, outcome, order_type,
			payment_method_id, payment_kind,
			gross_total, discount_amount, net_total,
			cash_received, change_due, reason_id, notes, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (order_id, outcome) DO NOTHING
	`, e.OrderID, e.SessionID, e.Outcome, e.OrderType,
		e.PaymentMethodID, e.PaymentKind,
		e.GrossTotal, e.DiscountAmount, e.NetTotal,
		e.CashReceived, e.ChangeDue, e.ReasonID, e.Notes, e.OccurredAt)
	return err
}

type DailySummary struct {
	Day           time.Time
	SalesCount    int
	Cancellations int
	GrossTotal    int64
	NetTotal      int64
}

// Summary aggregates one calendar day of journal entries.
func (r *Repo) Summary(ctx context.Context, day time.Time) (DailySummary, error) {
	s := DailySummary{Day: day}
	err := r.DB.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE outcome = 'completed'),
			COUNT(*) FILTER (WHERE outcome = 'cancelled'),
			COALESCE(SUM(gross_total) FILTER (WHERE outcome = 'completed'), 0),
			COALESCE(SUM(net_total) FILTER (WHERE outcome = 'completed'), 0)
		FROM sales_journal
		WHERE occurred_at >= $1 AND occurred_at < $1 + INTERVAL '1 day'
	`, day.Truncate(24*time.Hour)).Scan(&s.SalesCount, &s.Cancellations, &s.GrossTotal, &s.NetTotal)
	if err != nil {
		return DailySummary{}, err
	}
	return s, nil
}
