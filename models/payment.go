package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRow is the denormalized ticket+raffle+customer projection used
// by the payments list. Read-only; it is assembled by a join query.
type PaymentRow struct {
	TicketID          string          `json:"ticket_id"`
	TicketNumber      int             `json:"ticket_number"`
	Code              string          `json:"code,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            PaymentStatus   `json:"status"`
	PaymentMethod     string          `json:"payment_method,omitempty"`
	PaymentIntentID   string          `json:"payment_intent_id,omitempty"`
	CheckoutSessionID string          `json:"checkout_session_id,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	Created           time.Time       `json:"created"`

	RaffleID      string `json:"raffle_id"`
	ItemName      string `json:"item_name"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}
