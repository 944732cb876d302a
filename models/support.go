package models

import (
	"time"
)

type RequestStatus string

const (
	RequestOpen    RequestStatus = "open"
	RequestPending RequestStatus = "pending"
	RequestClosed  RequestStatus = "closed"
)

type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderAdmin    SenderType = "admin"
)

// SupportRequest is one conversation thread. Closed is terminal for new
// messages, not for the record itself.
type SupportRequest struct {
	ID         string        `json:"id"`
	CustomerID string        `json:"customer_id"`
	Subject    string        `json:"subject,omitempty"`
	Status     RequestStatus `json:"status"`
	Created    time.Time     `json:"created"`
	Updated    time.Time     `json:"updated"`
}

// SupportMessage is a persisted chat message. ClientRef carries the
// sender-generated correlation id so the realtime echo can be matched
// back to its optimistic local copy by identity instead of content.
type SupportMessage struct {
	ID        string     `json:"id"`
	RequestID string     `json:"request_id"`
	Sender    SenderType `json:"sender"`
	Text      string     `json:"text"`
	ClientRef string     `json:"client_ref,omitempty"`
	Created   time.Time  `json:"created"`
}

// TypingSignal is the ephemeral broadcast payload for typing indicators.
// It is never persisted.
type TypingSignal struct {
	RequestID string     `json:"request_id"`
	Sender    SenderType `json:"sender"`
	IsTyping  bool       `json:"is_typing"`
	Timestamp time.Time  `json:"timestamp"`
}
