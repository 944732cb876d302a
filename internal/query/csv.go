package query

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pocketbase/dbx"

	"snapwin-admin/models"
)

// TicketStreamer is the full-set fetch contract behind CSV export.
type TicketStreamer interface {
	FetchAll(ctx context.Context, exprs []dbx.Expression, visit func(models.Ticket) error) error
}

var csvHeader = []string{
	"ticket_id", "raffle_id", "item_name", "customer_id", "customer_name",
	"customer_email", "number", "ticket_code", "payment_status", "amount",
	"currency", "payment_method", "payment_intent_id", "checkout_session_id",
	"completed_at", "is_winner", "error_text", "created",
}

// Exporter streams the FULL filtered ticket set as CSV, not just the
// visible page. The same lookup short-circuit applies: a no-match
// search exports headers only.
type Exporter struct {
	src    TicketStreamer
	lookup IDResolver
	now    func() time.Time
}

func NewExporter(src TicketStreamer, lookup IDResolver) *Exporter {
	return &Exporter{src: src, lookup: lookup, now: time.Now}
}

func (e *Exporter) WriteCSV(ctx context.Context, f TicketFilter, w io.Writer) error {
	out := csv.NewWriter(w)
	if err := out.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	resolved, empty, err := ResolveSearches(ctx, e.lookup, f)
	if err != nil {
		return err
	}
	if !empty {
		err = e.src.FetchAll(ctx, resolved.Expressions(e.now()), func(t models.Ticket) error {
			return out.Write(csvRow(t))
		})
		if err != nil {
			return err
		}
	}

	out.Flush()
	return out.Error()
}

func csvRow(t models.Ticket) []string {
	itemName, customerName, customerEmail := "", "", ""
	if t.Raffle != nil {
		itemName = t.Raffle.ItemName
	}
	if t.Customer != nil {
		customerName = t.Customer.Name
		customerEmail = t.Customer.Email
	}

	completedAt := ""
	if t.CompletedAt != nil {
		completedAt = t.CompletedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		t.ID,
		t.RaffleID,
		itemName,
		t.CustomerID,
		customerName,
		customerEmail,
		strconv.Itoa(t.Number),
		t.Code,
		string(t.PaymentStatus),
		t.Amount.String(),
		t.Currency,
		t.PaymentMethod,
		t.PaymentIntentID,
		t.CheckoutSessionID,
		completedAt,
		strconv.FormatBool(t.IsWinner),
		t.ErrorText,
		t.Created.UTC().Format(time.RFC3339),
	}
}
