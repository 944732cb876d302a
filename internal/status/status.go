package status

import "errors"

var (
	ErrStaleResult        = errors.New("query: result superseded by a newer request")
	ErrClosedConversation = errors.New("support: conversation is closed")
	ErrUnknownClientRef   = errors.New("support: no pending message with that ref")
	ErrInvalidTarget      = errors.New("campaign: invalid targeting payload")
)
