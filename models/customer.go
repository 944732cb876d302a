package models

import (
	"time"
)

type Customer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	County       string    `json:"county,omitempty"`
	HasPushToken bool      `json:"has_push_token"`
	Created      time.Time `json:"created"`
}
