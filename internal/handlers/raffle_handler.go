package handlers

import (
	"strconv"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
	"github.com/shopspring/decimal"

	"snapwin-admin/internal/campaign"
	"snapwin-admin/models"
)

type RaffleHandler struct {
	app       core.App
	campaigns *campaign.Service
}

func NewRaffleHandler(app core.App, campaigns *campaign.Service) *RaffleHandler {
	return &RaffleHandler{app: app, campaigns: campaigns}
}

type raffleUpsert struct {
	ItemName        string `json:"item_name"`
	ItemDescription string `json:"item_description"`
	TicketPrice     string `json:"ticket_price"`
	TotalTickets    int    `json:"total_tickets"`
	Status          string `json:"status"`
	DrawDate        string `json:"draw_date"`
	MaxPerCustomer  int    `json:"max_per_customer"`
}

func (h *RaffleHandler) ListRaffles(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	q := e.Request.URL.Query()
	filter := "1=1"
	params := map[string]any{}
	if st := q.Get("status"); st != "" {
		filter = "status = {:status}"
		params["status"] = st
	}

	records, err := h.app.FindRecordsByFilter("raffles", filter, "-created", 200, 0, params)
	if err != nil {
		return apis.NewBadRequestError("Failed to query raffles", err)
	}

	raffles := make([]models.Raffle, 0, len(records))
	for _, rec := range records {
		raffle, err := models.RaffleFromRecord(rec)
		if err != nil {
			h.app.Logger().Warn("decode raffle", "raffle", rec.Id, "error", err)
			continue
		}
		raffles = append(raffles, raffle)
	}
	return e.JSON(200, map[string]any{"raffles": raffles, "total": len(raffles)})
}

func (h *RaffleHandler) GetRaffle(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	rec, err := h.app.FindRecordById("raffles", e.Request.PathValue("raffleId"))
	if err != nil {
		return apis.NewNotFoundError("Raffle not found", err)
	}
	raffle, err := models.RaffleFromRecord(rec)
	if err != nil {
		return apis.NewBadRequestError("Failed to decode raffle", err)
	}
	return e.JSON(200, raffle)
}

func (h *RaffleHandler) CreateRaffle(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	var body raffleUpsert
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	col, err := h.app.FindCollectionByNameOrId("raffles")
	if err != nil {
		return apis.NewBadRequestError("Failed to find raffles collection", err)
	}

	rec := core.NewRecord(col)
	if err := h.applyUpsert(rec, body, true); err != nil {
		return apis.NewBadRequestError(err.Error(), err)
	}
	if err := h.app.Save(rec); err != nil {
		return apis.NewBadRequestError("Failed to create raffle", err)
	}

	raffle, _ := models.RaffleFromRecord(rec)
	return e.JSON(201, raffle)
}

func (h *RaffleHandler) UpdateRaffle(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	rec, err := h.app.FindRecordById("raffles", e.Request.PathValue("raffleId"))
	if err != nil {
		return apis.NewNotFoundError("Raffle not found", err)
	}

	var body raffleUpsert
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	if err := h.applyUpsert(rec, body, false); err != nil {
		return apis.NewBadRequestError(err.Error(), err)
	}
	if err := h.app.Save(rec); err != nil {
		return apis.NewBadRequestError("Failed to update raffle", err)
	}

	raffle, _ := models.RaffleFromRecord(rec)
	return e.JSON(200, raffle)
}

func (h *RaffleHandler) applyUpsert(rec *core.Record, body raffleUpsert, create bool) error {
	if body.ItemName != "" || create {
		rec.Set("item_name", body.ItemName)
	}
	if body.ItemDescription != "" {
		rec.Set("item_description", body.ItemDescription)
	}
	if body.TicketPrice != "" {
		price, err := decimal.NewFromString(body.TicketPrice)
		if err != nil {
			return err
		}
		rec.Set("ticket_price", price.InexactFloat64())
	}
	if body.TotalTickets > 0 {
		rec.Set("total_tickets", body.TotalTickets)
	}
	if body.Status != "" {
		rec.Set("status", body.Status)
	} else if create {
		rec.Set("status", string(models.RaffleActive))
	}
	if body.DrawDate != "" {
		rec.Set("draw_date", body.DrawDate)
	}
	if body.MaxPerCustomer > 0 {
		rec.Set("max_per_customer", body.MaxPerCustomer)
	}

	raffle, err := models.RaffleFromRecord(rec)
	if err != nil {
		return err
	}
	return raffle.Validate()
}

// UploadImage attaches a prize image to a raffle.
func (h *RaffleHandler) UploadImage(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	rec, err := h.app.FindRecordById("raffles", e.Request.PathValue("raffleId"))
	if err != nil {
		return apis.NewNotFoundError("Raffle not found", err)
	}

	_, header, err := e.Request.FormFile("image")
	if err != nil {
		return apis.NewBadRequestError("Missing image file", err)
	}

	file, err := filesystem.NewFileFromMultipart(header)
	if err != nil {
		return apis.NewBadRequestError("Failed to read image file", err)
	}
	rec.Set("image", file)

	if err := h.app.Save(rec); err != nil {
		return apis.NewBadRequestError("Failed to save raffle image", err)
	}
	return e.JSON(200, map[string]string{"image": rec.GetString("image")})
}

// DrawWinner delegates the draw to the remote function and returns its
// result untouched.
func (h *RaffleHandler) DrawWinner(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	raffleID := e.Request.PathValue("raffleId")
	rec, err := h.app.FindRecordById("raffles", raffleID)
	if err != nil {
		return apis.NewNotFoundError("Raffle not found", err)
	}
	if rec.GetString("status") != string(models.RaffleActive) &&
		rec.GetString("status") != string(models.RaffleSoldout) {
		return apis.NewBadRequestError("Raffle is not drawable in status "+strconv.Quote(rec.GetString("status")), nil)
	}

	out, err := h.campaigns.DrawWinner(e.Request.Context(), raffleID)
	if err != nil {
		return apis.NewBadRequestError("Draw failed", err)
	}
	return e.JSON(200, out)
}
