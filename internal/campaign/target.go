package campaign

import (
	"fmt"

	"snapwin-admin/internal/status"
	"snapwin-admin/models"
)

// Mode selects how a campaign's audience is resolved.
type Mode string

const (
	ModeAllUsers          Mode = "all_users"
	ModeRaffleUsers       Mode = "raffle_users"
	ModeSelectedCustomers Mode = "selected_customers"
	ModeAttemptStatus     Mode = "attempt_status"
	ModeMultiRaffleUnion  Mode = "multi_raffle_union"
)

// Target is the discriminated targeting payload. Only the fields of the
// selected mode are honored; Validate rejects payloads missing their
// mode's required fields.
type Target struct {
	Mode Mode `json:"mode"`

	// raffle_users and attempt_status
	RaffleID string `json:"raffle_id,omitempty"`

	// selected_customers
	CustomerIDs []string `json:"customer_ids,omitempty"`

	// attempt_status
	PaymentStatus models.PaymentStatus `json:"payment_status,omitempty"`

	// multi_raffle_union
	RaffleIDs []string `json:"raffle_ids,omitempty"`
}

func (t Target) Validate() error {
	switch t.Mode {
	case ModeAllUsers:
		return nil
	case ModeRaffleUsers:
		if t.RaffleID == "" {
			return fmt.Errorf("%w: raffle_users requires raffle_id", status.ErrInvalidTarget)
		}
		return nil
	case ModeSelectedCustomers:
		if len(t.CustomerIDs) == 0 {
			return fmt.Errorf("%w: selected_customers requires customer_ids", status.ErrInvalidTarget)
		}
		return nil
	case ModeAttemptStatus:
		if t.RaffleID == "" {
			return fmt.Errorf("%w: attempt_status requires raffle_id", status.ErrInvalidTarget)
		}
		switch t.PaymentStatus {
		case models.PaymentPending, models.PaymentCompleted, models.PaymentFailed:
			return nil
		case "":
			return fmt.Errorf("%w: attempt_status requires payment_status", status.ErrInvalidTarget)
		default:
			return fmt.Errorf("%w: unknown payment_status %q", status.ErrInvalidTarget, t.PaymentStatus)
		}
	case ModeMultiRaffleUnion:
		if len(t.RaffleIDs) < 2 {
			return fmt.Errorf("%w: multi_raffle_union requires at least two raffle_ids", status.ErrInvalidTarget)
		}
		return nil
	case "":
		return fmt.Errorf("%w: mode is required", status.ErrInvalidTarget)
	default:
		return fmt.Errorf("%w: unknown mode %q", status.ErrInvalidTarget, t.Mode)
	}
}

// Message is the notification content sent to every resolved recipient.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (m Message) Validate() error {
	if m.Title == "" {
		return fmt.Errorf("%w: title is required", status.ErrInvalidTarget)
	}
	if m.Body == "" {
		return fmt.Errorf("%w: body is required", status.ErrInvalidTarget)
	}
	return nil
}
