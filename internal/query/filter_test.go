package query

import (
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSQL(t *testing.T, f TicketFilter, now time.Time) (string, dbx.Params) {
	t.Helper()

	db := dbx.NewFromDB(nil, "sqlite")
	params := dbx.Params{}
	parts := []string{}
	for _, expr := range f.Expressions(now) {
		parts = append(parts, expr.Build(db, params))
	}
	return strings.Join(parts, " AND "), params
}

func paramValues(params dbx.Params) []any {
	values := make([]any, 0, len(params))
	for _, v := range params {
		values = append(values, v)
	}
	return values
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
		{"plain", "plain"},
		{"%_\\", `\%\_` + `\\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeLike(tt.in), "input %q", tt.in)
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%pi\\_3%", LikePattern("pi_3", MatchContains))
	assert.Equal(t, "cs\\_test%", LikePattern("cs_test", MatchStarts))
}

func TestExpressions_Empty(t *testing.T) {
	f := TicketFilter{Status: "all"}
	assert.Empty(t, f.Expressions(time.Now()))
}

func TestExpressions_StatusAndWinner(t *testing.T) {
	sql, params := buildSQL(t, TicketFilter{Status: "failed", WinnerOnly: true}, time.Now())

	assert.Contains(t, sql, "payment_status")
	assert.Contains(t, sql, "is_winner")
	assert.Contains(t, paramValues(params), "failed")
}

func TestExpressions_PendingOlderThanOverridesStatus(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f := TicketFilter{
		Status:              "completed",
		PendingOlderThanMin: 30,
	}

	sql, params := buildSQL(t, f, now)

	values := paramValues(params)
	assert.Contains(t, values, "pending")
	assert.NotContains(t, values, "completed")
	assert.Contains(t, sql, "created <=")
	assert.Contains(t, values, dtParam(now.Add(-30*time.Minute)))
}

func TestExpressions_TimeFieldSelector(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := TicketFilter{TimeField: TimeCompleted, DateFrom: from}

	sql, params := buildSQL(t, f, time.Now())

	assert.Contains(t, sql, "completed_at >=")
	assert.Contains(t, paramValues(params), dtParam(from))
}

func TestExpressions_CodePatternEscaped(t *testing.T) {
	f := TicketFilter{Code: "50%", CodeMode: MatchContains}

	sql, params := buildSQL(t, f, time.Now())

	assert.Contains(t, sql, "ticket_code LIKE")
	assert.Contains(t, sql, "ESCAPE")
	assert.Contains(t, paramValues(params), `%50\%%`)
}

func TestExpressions_CodeExactSkipsLike(t *testing.T) {
	sql, params := buildSQL(t, TicketFilter{Code: "SNAP-0001", CodeMode: MatchExact}, time.Now())

	assert.NotContains(t, sql, "LIKE")
	assert.Contains(t, paramValues(params), "SNAP-0001")
}

func TestExpressions_ReferenceEither(t *testing.T) {
	f := TicketFilter{
		Reference:       "pi_123",
		ReferenceMode:   MatchStarts,
		ReferenceTarget: RefEither,
	}

	sql, params := buildSQL(t, f, time.Now())

	assert.Contains(t, sql, "payment_intent_id LIKE")
	assert.Contains(t, sql, "checkout_session_id LIKE")
	assert.Contains(t, sql, " OR ")
	// Both branches share the same escaped prefix pattern.
	count := 0
	for _, v := range paramValues(params) {
		if v == `pi\_123%` {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestExpressions_AmountRangeAndCurrency(t *testing.T) {
	f := TicketFilter{
		MinAmount: decimal.NewNullDecimal(decimal.NewFromInt(5)),
		MaxAmount: decimal.NewNullDecimal(decimal.NewFromInt(20)),
		Currency:  "EUR",
	}

	sql, params := buildSQL(t, f, time.Now())

	assert.Contains(t, sql, "amount >=")
	assert.Contains(t, sql, "amount <=")
	assert.Contains(t, sql, "currency")
	assert.Contains(t, paramValues(params), "eur")
}

func TestExpressions_ResolvedIDSets(t *testing.T) {
	f := TicketFilter{
		CustomerIDs: []string{"c1", "c2"},
		RaffleIDs:   []string{"r1"},
	}

	sql, _ := buildSQL(t, f, time.Now())

	assert.Contains(t, sql, "IN")
	require.Contains(t, sql, "customer")
	require.Contains(t, sql, "raffle")
}

func TestExpressions_FlagsAndSubstrings(t *testing.T) {
	f := TicketFilter{
		HasPaymentRef:  true,
		EmptyCode:      true,
		MethodContains: "card",
		ErrorContains:  "declined",
	}

	sql, params := buildSQL(t, f, time.Now())

	assert.Contains(t, sql, "payment_intent_id != ''")
	assert.Contains(t, sql, "checkout_session_id != ''")
	assert.Contains(t, sql, "ticket_code = ''")
	assert.Contains(t, paramValues(params), "%card%")
	assert.Contains(t, paramValues(params), "%declined%")
}

func TestPagination(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0))
	assert.Equal(t, 1, TotalPages(1))
	assert.Equal(t, 1, TotalPages(25))
	assert.Equal(t, 2, TotalPages(26))
	assert.Equal(t, 3, TotalPages(60))

	assert.Equal(t, 1, ClampPage(0, 100))
	assert.Equal(t, 1, ClampPage(1, 0))
	assert.Equal(t, 3, ClampPage(9, 60))

	tests := []struct {
		page, total, start, end int
	}{
		{1, 0, 0, 0},
		{1, 3, 1, 3},
		{1, 60, 1, 25},
		{2, 60, 26, 50},
		{3, 60, 51, 60},
		{9, 60, 51, 60}, // clamped to last page
	}
	for _, tt := range tests {
		start, end := RangeFor(tt.page, tt.total)
		assert.Equal(t, tt.start, start, "page %d total %d", tt.page, tt.total)
		assert.Equal(t, tt.end, end, "page %d total %d", tt.page, tt.total)
	}
}
