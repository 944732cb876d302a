package query

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"snapwin-admin/models"
)

// PaymentsLister serves the read-only payments projection: one row per
// ticket joined with its raffle and customer. Built on a raw dbx query
// because the projection spans three collections.
type PaymentsLister struct {
	app core.App
}

func NewPaymentsLister(app core.App) *PaymentsLister {
	return &PaymentsLister{app: app}
}

const paymentsSelect = `
SELECT
	t.id AS ticket_id, t.number, t.ticket_code, t.amount, t.currency,
	t.payment_status, t.payment_method, t.payment_intent_id,
	t.checkout_session_id, t.completed_at, t.created,
	r.id AS raffle_id, r.item_name,
	c.id AS customer_id, c.name AS customer_name, c.email AS customer_email
FROM tickets t
LEFT JOIN raffles r ON r.id = t.raffle
LEFT JOIN customers c ON c.id = t.customer
`

// PaymentsPage is one resolved payments view page. Page carries the
// clamped value actually served, not the one requested.
type PaymentsPage struct {
	Rows       []models.PaymentRow `json:"rows"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"total_pages"`
}

func (p *PaymentsLister) List(ctx context.Context, page int, statusFilter string) (*PaymentsPage, error) {
	where := ""
	params := dbx.Params{}
	if statusFilter != "" && statusFilter != "all" {
		where = " WHERE t.payment_status = {:status}"
		params["status"] = statusFilter
	}

	var total int
	err := p.app.DB().
		NewQuery("SELECT COUNT(*) FROM tickets t" + where).
		Bind(params).
		WithContext(ctx).
		Row(&total)
	if err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}

	page, offset := pageWindow(page, total)
	params["limit"] = PageSize
	params["offset"] = offset

	var raw []dbx.NullStringMap
	err = p.app.DB().
		NewQuery(paymentsSelect + where + " ORDER BY t.created DESC LIMIT {:limit} OFFSET {:offset}").
		Bind(params).
		WithContext(ctx).
		All(&raw)
	if err != nil {
		return nil, fmt.Errorf("fetch payments: %w", err)
	}

	rows := make([]models.PaymentRow, 0, len(raw))
	for _, m := range raw {
		row, err := paymentRowFromMap(m)
		if err != nil {
			log.Printf("dropping payment row: %v", err)
			continue
		}
		rows = append(rows, row)
	}
	return &PaymentsPage{
		Rows:       rows,
		Total:      total,
		Page:       page,
		TotalPages: TotalPages(total),
	}, nil
}

// pageWindow clamps the requested page against the row count and
// returns it with its offset. The clamped value is what gets served,
// so the response never labels rows with a page past the last one.
func pageWindow(page, total int) (clamped, offset int) {
	clamped = ClampPage(page, total)
	return clamped, (clamped - 1) * PageSize
}

func paymentRowFromMap(m dbx.NullStringMap) (models.PaymentRow, error) {
	amount, ok := models.CoerceDecimal(nullString(m, "amount"))
	if !ok {
		return models.PaymentRow{}, fmt.Errorf("payment row %s: unparsable amount %q", nullString(m, "ticket_id"), nullString(m, "amount"))
	}

	number, _ := strconv.Atoi(nullString(m, "number"))

	return models.PaymentRow{
		TicketID:          nullString(m, "ticket_id"),
		TicketNumber:      number,
		Code:              nullString(m, "ticket_code"),
		Amount:            amount,
		Currency:          nullString(m, "currency"),
		Status:            models.PaymentStatus(nullString(m, "payment_status")),
		PaymentMethod:     nullString(m, "payment_method"),
		PaymentIntentID:   nullString(m, "payment_intent_id"),
		CheckoutSessionID: nullString(m, "checkout_session_id"),
		CompletedAt:       parseTimeOrNil(nullString(m, "completed_at")),
		Created:           parseTimeOrZero(nullString(m, "created")),
		RaffleID:          nullString(m, "raffle_id"),
		ItemName:          nullString(m, "item_name"),
		CustomerID:        nullString(m, "customer_id"),
		CustomerName:      nullString(m, "customer_name"),
		CustomerEmail:     nullString(m, "customer_email"),
	}, nil
}

func nullString(m dbx.NullStringMap, key string) string {
	if v, ok := m[key]; ok && v.Valid {
		return v.String
	}
	return ""
}

func parseTimeOrNil(s string) *time.Time {
	if s == "" {
		return nil
	}
	dt, err := types.ParseDateTime(s)
	if err != nil || dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}

func parseTimeOrZero(s string) time.Time {
	if t := parseTimeOrNil(s); t != nil {
		return *t
	}
	return time.Time{}
}
