package handlers

import (
	"strconv"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"snapwin-admin/internal/query"
	"snapwin-admin/models"
)

type CustomerHandler struct {
	app    core.App
	lookup *query.Lookup
}

func NewCustomerHandler(app core.App, lookup *query.Lookup) *CustomerHandler {
	return &CustomerHandler{app: app, lookup: lookup}
}

func (h *CustomerHandler) ListCustomers(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	q := e.Request.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	filter := "1=1"
	params := map[string]any{}
	if term := q.Get("search"); term != "" {
		filter = "name ~ {:term} || email ~ {:term}"
		params["term"] = term
	}

	records, err := h.app.FindRecordsByFilter(
		"customers", filter, "-created", query.PageSize, (page-1)*query.PageSize, params)
	if err != nil {
		return apis.NewBadRequestError("Failed to query customers", err)
	}

	customers := make([]models.Customer, 0, len(records))
	for _, rec := range records {
		customers = append(customers, models.CustomerFromRecord(rec))
	}
	return e.JSON(200, map[string]any{"customers": customers, "page": page})
}

func (h *CustomerHandler) GetCustomer(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	rec, err := h.app.FindRecordById("customers", e.Request.PathValue("customerId"))
	if err != nil {
		return apis.NewNotFoundError("Customer not found", err)
	}
	return e.JSON(200, models.CustomerFromRecord(rec))
}

// LookupCustomers resolves a free-text search to customer ids the
// ticket filter can consume. Raffle lookup works the same way.
func (h *CustomerHandler) LookupCustomers(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	term := e.Request.URL.Query().Get("term")
	ids, err := h.lookup.CustomerIDs(e.Request.Context(), term)
	if err != nil {
		return apis.NewBadRequestError("Lookup failed", err)
	}
	return e.JSON(200, map[string]any{"ids": ids})
}

func (h *CustomerHandler) LookupRaffles(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	term := e.Request.URL.Query().Get("term")
	ids, err := h.lookup.RaffleIDs(e.Request.Context(), term)
	if err != nil {
		return apis.NewBadRequestError("Lookup failed", err)
	}
	return e.JSON(200, map[string]any{"ids": ids})
}
