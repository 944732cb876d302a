package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Ticket is one purchased raffle entry. Tickets are created pending by
// checkout, flipped to completed/failed by the payment webhook and to
// winner by the draw function; the admin surface only observes them.
type Ticket struct {
	ID                string          `json:"id"`
	RaffleID          string          `json:"raffle_id"`
	CustomerID        string          `json:"customer_id"`
	Number            int             `json:"number"`
	Code              string          `json:"code,omitempty"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	PaymentIntentID   string          `json:"payment_intent_id,omitempty"`
	CheckoutSessionID string          `json:"checkout_session_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	PaymentMethod     string          `json:"payment_method,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	ErrorText         string          `json:"error_text,omitempty"`
	IsWinner          bool            `json:"is_winner"`
	Created           time.Time       `json:"created"`

	// Embedded relations, present only when the query expanded them.
	Raffle   *RaffleRef   `json:"raffle,omitempty"`
	Customer *CustomerRef `json:"customer,omitempty"`
}

// RaffleRef is the slim raffle embed carried by ticket rows.
type RaffleRef struct {
	ID       string `json:"id"`
	ItemName string `json:"item_name"`
}

// CustomerRef is the slim customer embed carried by ticket rows.
type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HasPaymentRef reports whether either Stripe-style reference is set.
func (t Ticket) HasPaymentRef() bool {
	return t.PaymentIntentID != "" || t.CheckoutSessionID != ""
}
