package models

import (
	"time"
)

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliveryOK      DeliveryStatus = "ok"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Campaign is the audit record of one bulk push/in-app send.
type Campaign struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Mode       string    `json:"mode"`
	Recipients int       `json:"recipients"`
	Created    time.Time `json:"created"`
}

// Delivery is the per-recipient outcome of a campaign send.
type Delivery struct {
	ID         string         `json:"id"`
	CampaignID string         `json:"campaign_id"`
	CustomerID string         `json:"customer_id"`
	Status     DeliveryStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	Created    time.Time      `json:"created"`
}
