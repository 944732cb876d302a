package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// PageSize is the fixed tickets page size.
const PageSize = 25

type MatchMode string

const (
	MatchContains MatchMode = "contains"
	MatchStarts   MatchMode = "starts"
	MatchExact    MatchMode = "exact"
)

type RefTarget string

const (
	RefIntent  RefTarget = "payment_intent"
	RefSession RefTarget = "checkout_session"
	RefEither  RefTarget = "either"
)

type TimeField string

const (
	TimeCreated   TimeField = "created"
	TimeCompleted TimeField = "completed_at"
)

// TicketFilter is the bag of independent admin filter fields. Every
// non-empty field contributes one conjunctive predicate.
type TicketFilter struct {
	Status     string // all|pending|completed|failed
	WinnerOnly bool

	RaffleID   string
	CustomerID string
	TicketID   string

	Code     string
	CodeMode MatchMode

	Reference       string
	ReferenceMode   MatchMode
	ReferenceTarget RefTarget

	TimeField TimeField
	DateFrom  time.Time
	DateTo    time.Time

	// PendingOlderThanMin forces status=pending with an upper bound of
	// now minus N minutes on the selected time field. It overrides the
	// manual status selector.
	PendingOlderThanMin int

	MinAmount decimal.NullDecimal
	MaxAmount decimal.NullDecimal

	Currency       string
	MethodContains string
	ErrorContains  string

	HasPaymentRef bool
	EmptyCode     bool

	// Free-text searches resolved through the two-step lookup before
	// the main query runs.
	CustomerSearch string
	RaffleSearch   string

	// Primary-key sets produced by the lookup resolution.
	CustomerIDs []string
	RaffleIDs   []string

	Page int
}

func (f TicketFilter) timeField() string {
	if f.TimeField == TimeCompleted {
		return "completed_at"
	}
	return "created"
}

// Expressions composes the filter into conjunctive dbx predicates.
// now anchors the pending-older-than cutoff.
func (f TicketFilter) Expressions(now time.Time) []dbx.Expression {
	b := &exprBuilder{}

	status := f.Status
	if f.PendingOlderThanMin > 0 {
		// The age filter only makes sense over pending rows; it wins
		// over the manual status selector.
		status = "pending"
	}
	if status != "" && status != "all" {
		b.add(dbx.HashExp{"payment_status": status})
	}
	if f.PendingOlderThanMin > 0 {
		cutoff := now.Add(-time.Duration(f.PendingOlderThanMin) * time.Minute)
		p := b.name()
		b.add(dbx.NewExp(f.timeField()+" <= {:"+p+"}", dbx.Params{p: dtParam(cutoff)}))
	}

	if f.WinnerOnly {
		b.add(dbx.HashExp{"is_winner": true})
	}
	if f.RaffleID != "" {
		b.add(dbx.HashExp{"raffle": f.RaffleID})
	}
	if f.CustomerID != "" {
		b.add(dbx.HashExp{"customer": f.CustomerID})
	}
	if f.TicketID != "" {
		b.add(dbx.HashExp{"id": f.TicketID})
	}
	if len(f.RaffleIDs) > 0 {
		b.add(dbx.In("raffle", toAny(f.RaffleIDs)...))
	}
	if len(f.CustomerIDs) > 0 {
		b.add(dbx.In("customer", toAny(f.CustomerIDs)...))
	}

	if f.Code != "" {
		b.add(b.match("ticket_code", f.Code, f.CodeMode))
	}
	if f.Reference != "" {
		switch f.ReferenceTarget {
		case RefIntent:
			b.add(b.match("payment_intent_id", f.Reference, f.ReferenceMode))
		case RefSession:
			b.add(b.match("checkout_session_id", f.Reference, f.ReferenceMode))
		default:
			b.add(dbx.Or(
				b.match("payment_intent_id", f.Reference, f.ReferenceMode),
				b.match("checkout_session_id", f.Reference, f.ReferenceMode),
			))
		}
	}

	if !f.DateFrom.IsZero() {
		p := b.name()
		b.add(dbx.NewExp(f.timeField()+" >= {:"+p+"}", dbx.Params{p: dtParam(f.DateFrom)}))
	}
	if !f.DateTo.IsZero() {
		p := b.name()
		b.add(dbx.NewExp(f.timeField()+" <= {:"+p+"}", dbx.Params{p: dtParam(f.DateTo)}))
	}

	if f.MinAmount.Valid {
		p := b.name()
		b.add(dbx.NewExp("amount >= {:"+p+"}", dbx.Params{p: f.MinAmount.Decimal.InexactFloat64()}))
	}
	if f.MaxAmount.Valid {
		p := b.name()
		b.add(dbx.NewExp("amount <= {:"+p+"}", dbx.Params{p: f.MaxAmount.Decimal.InexactFloat64()}))
	}

	if f.Currency != "" {
		b.add(dbx.HashExp{"currency": strings.ToLower(f.Currency)})
	}
	if f.MethodContains != "" {
		b.add(b.match("payment_method", f.MethodContains, MatchContains))
	}
	if f.ErrorContains != "" {
		b.add(b.match("error_text", f.ErrorContains, MatchContains))
	}

	if f.HasPaymentRef {
		b.add(dbx.Or(
			dbx.NewExp("payment_intent_id != ''"),
			dbx.NewExp("checkout_session_id != ''"),
		))
	}
	if f.EmptyCode {
		// Legacy rows created before ticket codes existed.
		b.add(dbx.NewExp("(ticket_code = '' OR ticket_code IS NULL)"))
	}

	return b.exprs
}

// exprBuilder collects predicates and hands out unique parameter names
// so composed expressions never collide inside one query.
type exprBuilder struct {
	exprs []dbx.Expression
	n     int
}

func (b *exprBuilder) add(e dbx.Expression) {
	b.exprs = append(b.exprs, e)
}

func (b *exprBuilder) name() string {
	b.n++
	return fmt.Sprintf("tf%d", b.n)
}

// match builds an equality or escaped-LIKE predicate per the mode.
func (b *exprBuilder) match(col, term string, mode MatchMode) dbx.Expression {
	if mode == MatchExact {
		return dbx.HashExp{col: term}
	}
	p := b.name()
	return dbx.NewExp(col+" LIKE {:"+p+"} ESCAPE '\\'", dbx.Params{p: LikePattern(term, mode)})
}

// EscapeLike escapes LIKE metacharacters so a literal search for "50%"
// does not match arbitrary substrings.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// LikePattern renders the escaped wildcard pattern for a match mode.
func LikePattern(term string, mode MatchMode) string {
	esc := EscapeLike(term)
	if mode == MatchStarts {
		return esc + "%"
	}
	return "%" + esc + "%"
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func dtParam(t time.Time) string {
	dt, err := types.ParseDateTime(t)
	if err != nil {
		return t.UTC().Format(types.DefaultDateLayout)
	}
	return dt.String()
}
