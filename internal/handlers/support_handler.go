package handlers

import (
	"errors"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"snapwin-admin/internal/chat"
	"snapwin-admin/internal/status"
	"snapwin-admin/models"
)

type SupportHandler struct {
	app  core.App
	chat *chat.Service
}

func NewSupportHandler(app core.App, chatService *chat.Service) *SupportHandler {
	return &SupportHandler{app: app, chat: chatService}
}

func (h *SupportHandler) ListRequests(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	filter := "1=1"
	params := map[string]any{}
	if st := e.Request.URL.Query().Get("status"); st != "" {
		filter = "status = {:status}"
		params["status"] = st
	}

	records, err := h.app.FindRecordsByFilter("support_requests", filter, "-updated", 200, 0, params)
	if err != nil {
		return apis.NewBadRequestError("Failed to query support requests", err)
	}

	requests := make([]models.SupportRequest, 0, len(records))
	for _, rec := range records {
		requests = append(requests, models.SupportRequestFromRecord(rec))
	}
	return e.JSON(200, map[string]any{"requests": requests})
}

// GetThread serves the merged conversation view: persisted history,
// pending local echoes and the customer's typing flag.
func (h *SupportHandler) GetThread(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	thread, err := h.chat.Thread(e.Request.Context(), e.Request.PathValue("requestId"))
	if err != nil {
		return apis.NewNotFoundError("Support request not found", err)
	}

	persisted, pending, err := thread.Messages(e.Request.Context())
	if err != nil {
		return apis.NewBadRequestError("Failed to load messages", err)
	}

	return e.JSON(200, map[string]any{
		"status":      thread.Status(),
		"messages":    persisted,
		"pending":     pending,
		"peer_typing": thread.PeerTyping(),
	})
}

func (h *SupportHandler) Reply(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if body.Text == "" {
		return apis.NewBadRequestError("Message text is required", nil)
	}

	thread, err := h.chat.Thread(e.Request.Context(), e.Request.PathValue("requestId"))
	if err != nil {
		return apis.NewNotFoundError("Support request not found", err)
	}

	ref, err := thread.Send(e.Request.Context(), body.Text)
	if errors.Is(err, status.ErrClosedConversation) {
		return apis.NewBadRequestError("Conversation is closed", err)
	}
	if err != nil {
		// The echo stays in the buffer as failed and can be retried.
		return e.JSON(502, map[string]any{"client_ref": ref, "state": chat.StateFailed})
	}
	return e.JSON(200, map[string]any{"client_ref": ref, "state": chat.StateSending})
}

func (h *SupportHandler) Retry(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	var body struct {
		ClientRef string `json:"client_ref"`
	}
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	thread, err := h.chat.Thread(e.Request.Context(), e.Request.PathValue("requestId"))
	if err != nil {
		return apis.NewNotFoundError("Support request not found", err)
	}

	err = thread.Retry(e.Request.Context(), body.ClientRef)
	switch {
	case errors.Is(err, status.ErrClosedConversation):
		return apis.NewBadRequestError("Conversation is closed", err)
	case errors.Is(err, status.ErrUnknownClientRef):
		return apis.NewNotFoundError("No failed message with that ref", err)
	case err != nil:
		return e.JSON(502, map[string]any{"client_ref": body.ClientRef, "state": chat.StateFailed})
	}
	return e.JSON(200, map[string]any{"client_ref": body.ClientRef, "state": chat.StateSending})
}

func (h *SupportHandler) CloseRequest(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	requestID := e.Request.PathValue("requestId")
	if err := h.chat.Close(e.Request.Context(), requestID); err != nil {
		return apis.NewBadRequestError("Failed to close request", err)
	}
	return e.JSON(200, map[string]string{"status": string(models.RequestClosed)})
}

// Typing records an admin keystroke. The broadcast itself is debounced
// inside the thread.
func (h *SupportHandler) Typing(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	thread, err := h.chat.Thread(e.Request.Context(), e.Request.PathValue("requestId"))
	if err != nil {
		return apis.NewNotFoundError("Support request not found", err)
	}

	thread.UserTyping()
	return e.NoContent(204)
}

// SetDraft stores the admin's unsent input so another console tab can
// restore it.
func (h *SupportHandler) SetDraft(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := e.BindBody(&body); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	thread, err := h.chat.Thread(e.Request.Context(), e.Request.PathValue("requestId"))
	if err != nil {
		return apis.NewNotFoundError("Support request not found", err)
	}

	if err := thread.SetDraft(body.Text); err != nil {
		return apis.NewBadRequestError("Conversation is closed", err)
	}
	return e.NoContent(204)
}
