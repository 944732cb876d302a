package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RaffleStatus string

const (
	RaffleActive    RaffleStatus = "active"
	RaffleSoldout   RaffleStatus = "soldout"
	RaffleDrawn     RaffleStatus = "drawn"
	RaffleCancelled RaffleStatus = "cancelled"
)

type Raffle struct {
	ID               string          `json:"id"`
	ItemName         string          `json:"item_name"`
	ItemDescription  string          `json:"item_description,omitempty"`
	ImageURL         string          `json:"image_url,omitempty"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TotalTickets     int             `json:"total_tickets"`
	SoldTickets      int             `json:"sold_tickets"`
	Status           RaffleStatus    `json:"status"`
	DrawDate         *time.Time      `json:"draw_date,omitempty"`
	WinnerTicketID   string          `json:"winner_ticket_id,omitempty"`
	WinnerCustomerID string          `json:"winner_customer_id,omitempty"`
	MaxPerCustomer   int             `json:"max_per_customer"`
	Created          time.Time       `json:"created"`
}

// Validate enforces the invariants an admin edit must not break.
// Winner assignment itself belongs to the external draw function.
func (r Raffle) Validate() error {
	if r.ItemName == "" {
		return fmt.Errorf("raffle: item name is required")
	}
	if r.TotalTickets <= 0 {
		return fmt.Errorf("raffle: total tickets must be positive")
	}
	if r.SoldTickets < 0 || r.SoldTickets > r.TotalTickets {
		return fmt.Errorf("raffle: sold tickets %d out of range [0, %d]", r.SoldTickets, r.TotalTickets)
	}
	if r.TicketPrice.IsNegative() {
		return fmt.Errorf("raffle: ticket price must not be negative")
	}
	if r.Status != RaffleDrawn && (r.WinnerTicketID != "" || r.WinnerCustomerID != "") {
		return fmt.Errorf("raffle: winner fields set while status is %q", r.Status)
	}
	return nil
}
