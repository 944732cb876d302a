package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"snapwin-admin/internal/query"
	"snapwin-admin/internal/status"
	"snapwin-admin/models"
	"snapwin-admin/monitoring"
)

type TicketHandler struct {
	app      core.App
	lister   *query.TicketLister
	exporter *query.Exporter
	payments *query.PaymentsLister
}

func NewTicketHandler(app core.App, lister *query.TicketLister, exporter *query.Exporter, payments *query.PaymentsLister) *TicketHandler {
	return &TicketHandler{
		app:      app,
		lister:   lister,
		exporter: exporter,
		payments: payments,
	}
}

// ListTickets serves the filtered, paginated ticket list.
func (h *TicketHandler) ListTickets(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	filter, err := parseTicketFilter(e.Request.URL.Query())
	if err != nil {
		return apis.NewBadRequestError(err.Error(), err)
	}

	start := time.Now()
	page, err := h.lister.List(e.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, status.ErrStaleResult) {
			// A newer request superseded this one; its response carries
			// the current page.
			monitoring.TrackTicketQuery(time.Since(start), "stale")
			return e.NoContent(204)
		}
		monitoring.TrackTicketQuery(time.Since(start), "error")
		return apis.NewBadRequestError("Failed to query tickets", err)
	}
	monitoring.TrackTicketQuery(time.Since(start), "ok")

	return e.JSON(200, page)
}

// ExportTickets streams the full filtered set as CSV, ignoring
// pagination.
func (h *TicketHandler) ExportTickets(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	filter, err := parseTicketFilter(e.Request.URL.Query())
	if err != nil {
		return apis.NewBadRequestError(err.Error(), err)
	}

	e.Response.Header().Set("Content-Type", "text/csv")
	e.Response.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="tickets-%s.csv"`, time.Now().Format("2006-01-02")))

	if err := h.exporter.WriteCSV(e.Request.Context(), filter, e.Response); err != nil {
		return apis.NewBadRequestError("Failed to export tickets", err)
	}
	return nil
}

// GetTicket serves one ticket with its raffle and customer embeds.
func (h *TicketHandler) GetTicket(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	ticketID := e.Request.PathValue("ticketId")
	rec, err := h.app.FindRecordById("tickets", ticketID)
	if err != nil {
		return apis.NewNotFoundError("Ticket not found", err)
	}

	if errs := h.app.ExpandRecord(rec, []string{"raffle", "customer"}, nil); len(errs) > 0 {
		for rel, expandErr := range errs {
			h.app.Logger().Warn("expand ticket relation", "ticket", ticketID, "relation", rel, "error", expandErr)
		}
	}

	ticket, err := models.TicketFromRecord(rec)
	if err != nil {
		return apis.NewBadRequestError("Failed to decode ticket", err)
	}
	return e.JSON(200, ticket)
}

// ListPayments serves the denormalized payment rows.
func (h *TicketHandler) ListPayments(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	q := e.Request.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	statusFilter := q.Get("status")

	result, err := h.payments.List(e.Request.Context(), page, statusFilter)
	if err != nil {
		return apis.NewBadRequestError("Failed to query payments", err)
	}
	return e.JSON(200, result)
}

// parseTicketFilter decodes the admin filter query string. Unknown
// values for enumerated fields are rejected, not silently dropped.
func parseTicketFilter(q url.Values) (query.TicketFilter, error) {
	f := query.TicketFilter{
		Status:         q.Get("status"),
		RaffleID:       q.Get("raffle_id"),
		CustomerID:     q.Get("customer_id"),
		TicketID:       q.Get("ticket_id"),
		Code:           q.Get("code"),
		Reference:      q.Get("reference"),
		Currency:       q.Get("currency"),
		MethodContains: q.Get("method"),
		ErrorContains:  q.Get("error"),
		CustomerSearch: q.Get("customer_search"),
		RaffleSearch:   q.Get("raffle_search"),
	}

	switch f.Status {
	case "", "all", "pending", "completed", "failed":
	default:
		return f, fmt.Errorf("unknown status %q", f.Status)
	}

	var err error
	if f.CodeMode, err = parseMatchMode(q.Get("code_mode")); err != nil {
		return f, err
	}
	if f.ReferenceMode, err = parseMatchMode(q.Get("reference_mode")); err != nil {
		return f, err
	}

	switch target := q.Get("reference_target"); target {
	case "", "either":
		f.ReferenceTarget = query.RefEither
	case "payment_intent":
		f.ReferenceTarget = query.RefIntent
	case "checkout_session":
		f.ReferenceTarget = query.RefSession
	default:
		return f, fmt.Errorf("unknown reference_target %q", target)
	}

	switch field := q.Get("time_field"); field {
	case "", "created":
		f.TimeField = query.TimeCreated
	case "completed_at":
		f.TimeField = query.TimeCompleted
	default:
		return f, fmt.Errorf("unknown time_field %q", field)
	}

	if f.DateFrom, _, err = parseDate(q.Get("date_from")); err != nil {
		return f, err
	}
	var dateOnly bool
	if f.DateTo, dateOnly, err = parseDate(q.Get("date_to")); err != nil {
		return f, err
	}
	if dateOnly {
		// A date-only upper bound means "through that day": rows created
		// during the final day still match the <= predicate.
		f.DateTo = f.DateTo.Add(24*time.Hour - time.Millisecond)
	}

	if v := q.Get("pending_older_than_min"); v != "" {
		if f.PendingOlderThanMin, err = strconv.Atoi(v); err != nil || f.PendingOlderThanMin < 0 {
			return f, fmt.Errorf("invalid pending_older_than_min %q", v)
		}
	}

	if f.MinAmount, err = parseAmount(q.Get("min_amount")); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseAmount(q.Get("max_amount")); err != nil {
		return f, err
	}

	f.WinnerOnly = q.Get("winner_only") == "true"
	f.HasPaymentRef = q.Get("has_payment_ref") == "true"
	f.EmptyCode = q.Get("empty_code") == "true"

	if v := q.Get("page"); v != "" {
		if f.Page, err = strconv.Atoi(v); err != nil {
			return f, fmt.Errorf("invalid page %q", v)
		}
	}

	return f, nil
}

func parseMatchMode(v string) (query.MatchMode, error) {
	switch v {
	case "", "contains":
		return query.MatchContains, nil
	case "starts":
		return query.MatchStarts, nil
	case "exact":
		return query.MatchExact, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", v)
	}
}

// parseDate accepts RFC3339 timestamps and bare dates. dateOnly tells
// the caller the value carried no time component.
func parseDate(v string) (t time.Time, dateOnly bool, err error) {
	if v == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	t, err = time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q", v)
	}
	return t, true, nil
}

func parseAmount(v string) (decimal.NullDecimal, error) {
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount %q", v)
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
