package models

import (
	"testing"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		ok    bool
	}{
		{"nil coalesces to zero", nil, "0", true},
		{"float", 12.5, "12.5", true},
		{"int", 7, "7", true},
		{"int64", int64(42), "42", true},
		{"numeric string", "19.99", "19.99", true},
		{"empty string coalesces to zero", "", "0", true},
		{"garbage string", "12,5 EUR", "0", false},
		{"unsupported type", []string{"x"}, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceDecimal(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
					"got %s, want %s", got, tt.want)
			}
		})
	}
}

func ticketCollection() *core.Collection {
	col := core.NewBaseCollection("tickets")
	col.Fields.Add(
		&core.RelationField{Name: "raffle", CollectionId: "raffles", MaxSelect: 1},
		&core.RelationField{Name: "customer", CollectionId: "customers", MaxSelect: 1},
		&core.NumberField{Name: "number"},
		&core.TextField{Name: "ticket_code"},
		&core.SelectField{Name: "payment_status", Values: []string{"pending", "completed", "failed"}, MaxSelect: 1},
		&core.TextField{Name: "payment_intent_id"},
		&core.TextField{Name: "checkout_session_id"},
		&core.NumberField{Name: "amount"},
		&core.TextField{Name: "currency"},
		&core.TextField{Name: "payment_method"},
		&core.DateField{Name: "completed_at"},
		&core.TextField{Name: "error_text"},
		&core.BoolField{Name: "is_winner"},
		&core.AutodateField{Name: "created", OnCreate: true},
	)
	return col
}

func TestTicketFromRecord(t *testing.T) {
	rec := core.NewRecord(ticketCollection())
	rec.Id = "t1"
	rec.Set("raffle", "r1")
	rec.Set("customer", "c1")
	rec.Set("number", 12)
	rec.Set("ticket_code", "SNAP-0012")
	rec.Set("payment_status", "completed")
	rec.Set("payment_intent_id", "pi_123")
	rec.Set("amount", 4.5)
	rec.Set("currency", "eur")

	ticket, err := TicketFromRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, "t1", ticket.ID)
	assert.Equal(t, "r1", ticket.RaffleID)
	assert.Equal(t, 12, ticket.Number)
	assert.Equal(t, PaymentCompleted, ticket.PaymentStatus)
	assert.True(t, ticket.Amount.Equal(decimal.NewFromFloat(4.5)))
	assert.True(t, ticket.HasPaymentRef())
	assert.Nil(t, ticket.CompletedAt)
	assert.Nil(t, ticket.Raffle)
	assert.Nil(t, ticket.Customer)
}

func TestTicketFromRecord_FlattensExpandShapes(t *testing.T) {
	raffleCol := core.NewBaseCollection("raffles")
	raffleCol.Fields.Add(&core.TextField{Name: "item_name"})

	raffle := core.NewRecord(raffleCol)
	raffle.Id = "r1"
	raffle.Set("item_name", "PS5 Bundle")

	// The embed arrives either as a single record or as a
	// one-element list; both must flatten to the same ref.
	shapes := map[string]any{
		"single record": raffle,
		"list of one":   []*core.Record{raffle},
	}

	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			rec := core.NewRecord(ticketCollection())
			rec.Id = "t1"
			rec.Set("amount", 4.5)
			rec.SetExpand(map[string]any{"raffle": shape})

			ticket, err := TicketFromRecord(rec)
			require.NoError(t, err)
			require.NotNil(t, ticket.Raffle)
			assert.Equal(t, "r1", ticket.Raffle.ID)
			assert.Equal(t, "PS5 Bundle", ticket.Raffle.ItemName)
		})
	}
}

func TestRaffleValidate(t *testing.T) {
	base := Raffle{
		ItemName:     "Air Fryer",
		TicketPrice:  decimal.NewFromInt(2),
		TotalTickets: 500,
		SoldTickets:  120,
		Status:       RaffleActive,
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base.Validate())
	})

	t.Run("sold exceeds total", func(t *testing.T) {
		r := base
		r.SoldTickets = 501
		assert.Error(t, r.Validate())
	})

	t.Run("negative price", func(t *testing.T) {
		r := base
		r.TicketPrice = decimal.NewFromInt(-1)
		assert.Error(t, r.Validate())
	})

	t.Run("winner fields require drawn status", func(t *testing.T) {
		r := base
		r.WinnerTicketID = "t9"
		assert.Error(t, r.Validate())

		r.Status = RaffleDrawn
		r.DrawDate = timePtrFor(t)
		assert.NoError(t, r.Validate())
	})

	t.Run("missing item name", func(t *testing.T) {
		r := base
		r.ItemName = ""
		assert.Error(t, r.Validate())
	})
}

func timePtrFor(t *testing.T) *time.Time {
	t.Helper()
	now := time.Now()
	return &now
}
