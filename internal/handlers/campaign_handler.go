package handlers

import (
	"errors"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"snapwin-admin/internal/campaign"
	"snapwin-admin/internal/status"
)

type CampaignHandler struct {
	campaigns *campaign.Service
}

func NewCampaignHandler(campaigns *campaign.Service) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

func (h *CampaignHandler) SendCampaign(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	var body struct {
		Title  string          `json:"title"`
		Body   string          `json:"body"`
		Target campaign.Target `json:"target"`
	}
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	result, err := h.campaigns.Send(e.Request.Context(),
		campaign.Message{Title: body.Title, Body: body.Body}, body.Target)
	if errors.Is(err, status.ErrInvalidTarget) {
		return apis.NewBadRequestError(err.Error(), err)
	}
	if err != nil {
		// Partial sends still report what was delivered.
		return e.JSON(502, result)
	}
	return e.JSON(200, result)
}
