package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// The payment webhook and the checkout function write rows with
// inconsistent value shapes: amounts arrive as numbers or strings and
// expanded relations as one record or a one-element list depending on
// how specific the foreign key was. Everything crossing from a record
// into a view model goes through the helpers here, and a row that
// cannot be decoded is dropped by the caller instead of rendered.

// CoerceDecimal accepts the number-or-string amount shapes seen in
// ticket rows. A nil/empty value coalesces to zero.
func CoerceDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, true
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return d, err == nil
	case string:
		if val == "" {
			return decimal.Zero, true
		}
		d, err := decimal.NewFromString(val)
		return d, err == nil
	case decimal.Decimal:
		return val, true
	default:
		return decimal.Zero, false
	}
}

func timeOrNil(dt types.DateTime) *time.Time {
	if dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}

// relOne flattens the one-or-many expand shape into one-or-nil.
func relOne(rec *core.Record, field string) *core.Record {
	if one := rec.ExpandedOne(field); one != nil {
		return one
	}
	if all := rec.ExpandedAll(field); len(all) > 0 {
		return all[0]
	}
	return nil
}

func TicketFromRecord(rec *core.Record) (Ticket, error) {
	amount, ok := CoerceDecimal(rec.Get("amount"))
	if !ok {
		return Ticket{}, fmt.Errorf("ticket %s: unparsable amount %v", rec.Id, rec.Get("amount"))
	}

	t := Ticket{
		ID:                rec.Id,
		RaffleID:          rec.GetString("raffle"),
		CustomerID:        rec.GetString("customer"),
		Number:            rec.GetInt("number"),
		Code:              rec.GetString("ticket_code"),
		PaymentStatus:     PaymentStatus(rec.GetString("payment_status")),
		PaymentIntentID:   rec.GetString("payment_intent_id"),
		CheckoutSessionID: rec.GetString("checkout_session_id"),
		Amount:            amount,
		Currency:          rec.GetString("currency"),
		PaymentMethod:     rec.GetString("payment_method"),
		CompletedAt:       timeOrNil(rec.GetDateTime("completed_at")),
		ErrorText:         rec.GetString("error_text"),
		IsWinner:          rec.GetBool("is_winner"),
		Created:           rec.GetDateTime("created").Time(),
	}

	if raffle := relOne(rec, "raffle"); raffle != nil {
		t.Raffle = &RaffleRef{ID: raffle.Id, ItemName: raffle.GetString("item_name")}
	}
	if customer := relOne(rec, "customer"); customer != nil {
		t.Customer = &CustomerRef{
			ID:    customer.Id,
			Name:  customer.GetString("name"),
			Email: customer.GetString("email"),
		}
	}

	return t, nil
}

func RaffleFromRecord(rec *core.Record) (Raffle, error) {
	price, ok := CoerceDecimal(rec.Get("ticket_price"))
	if !ok {
		return Raffle{}, fmt.Errorf("raffle %s: unparsable ticket price %v", rec.Id, rec.Get("ticket_price"))
	}

	return Raffle{
		ID:               rec.Id,
		ItemName:         rec.GetString("item_name"),
		ItemDescription:  rec.GetString("item_description"),
		ImageURL:         rec.GetString("image"),
		TicketPrice:      price,
		TotalTickets:     rec.GetInt("total_tickets"),
		SoldTickets:      rec.GetInt("sold_tickets"),
		Status:           RaffleStatus(rec.GetString("status")),
		DrawDate:         timeOrNil(rec.GetDateTime("draw_date")),
		WinnerTicketID:   rec.GetString("winner_ticket"),
		WinnerCustomerID: rec.GetString("winner_customer"),
		MaxPerCustomer:   rec.GetInt("max_per_customer"),
		Created:          rec.GetDateTime("created").Time(),
	}, nil
}

func CustomerFromRecord(rec *core.Record) Customer {
	return Customer{
		ID:           rec.Id,
		Name:         rec.GetString("name"),
		Email:        rec.GetString("email"),
		Phone:        rec.GetString("phone"),
		County:       rec.GetString("county"),
		HasPushToken: rec.GetString("push_token") != "",
		Created:      rec.GetDateTime("created").Time(),
	}
}

func SupportRequestFromRecord(rec *core.Record) SupportRequest {
	return SupportRequest{
		ID:         rec.Id,
		CustomerID: rec.GetString("customer"),
		Subject:    rec.GetString("subject"),
		Status:     RequestStatus(rec.GetString("status")),
		Created:    rec.GetDateTime("created").Time(),
		Updated:    rec.GetDateTime("updated").Time(),
	}
}

func SupportMessageFromRecord(rec *core.Record) SupportMessage {
	return SupportMessage{
		ID:        rec.Id,
		RequestID: rec.GetString("request"),
		Sender:    SenderType(rec.GetString("sender")),
		Text:      rec.GetString("text"),
		ClientRef: rec.GetString("client_ref"),
		Created:   rec.GetDateTime("created").Time(),
	}
}
