package query

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pocketbase/dbx"

	"snapwin-admin/internal/status"
	"snapwin-admin/models"
)

// TicketSource abstracts the ticket table for the lister so the filter
// pipeline can be exercised without a database.
type TicketSource interface {
	Count(ctx context.Context, exprs []dbx.Expression) (int, error)
	Fetch(ctx context.Context, exprs []dbx.Expression, limit, offset int) ([]models.Ticket, error)
}

// IDResolver is the two-step lookup contract consumed by the lister.
type IDResolver interface {
	CustomerIDs(ctx context.Context, term string) ([]string, error)
	RaffleIDs(ctx context.Context, term string) ([]string, error)
}

// TicketPage is one fully resolved tickets list page.
type TicketPage struct {
	Rows       []models.Ticket `json:"rows"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	RangeStart int             `json:"range_start"`
	RangeEnd   int             `json:"range_end"`
}

// TicketLister executes a TicketFilter: two-step lookup resolution,
// count plus page fetch under the identical predicate, and a
// stale-result guard so a slow older fetch can never overwrite a newer
// one.
type TicketLister struct {
	src    TicketSource
	lookup IDResolver
	now    func() time.Time

	seq atomic.Uint64
}

func NewTicketLister(src TicketSource, lookup IDResolver) *TicketLister {
	return &TicketLister{
		src:    src,
		lookup: lookup,
		now:    time.Now,
	}
}

func (l *TicketLister) List(ctx context.Context, f TicketFilter) (*TicketPage, error) {
	mySeq := l.seq.Add(1)

	resolved, empty, err := ResolveSearches(ctx, l.lookup, f)
	if err != nil {
		return nil, err
	}
	if empty {
		// An empty IN-list would match everything on some backends, so
		// a no-match lookup never reaches the ticket table at all.
		return &TicketPage{Rows: []models.Ticket{}, Page: 1}, nil
	}

	exprs := resolved.Expressions(l.now())

	total, err := l.src.Count(ctx, exprs)
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}

	page := ClampPage(resolved.Page, total)
	rows := []models.Ticket{}
	if total > 0 {
		rows, err = l.src.Fetch(ctx, exprs, PageSize, (page-1)*PageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch tickets: %w", err)
		}
	}

	if l.seq.Load() != mySeq {
		return nil, status.ErrStaleResult
	}

	start, end := RangeFor(page, total)
	return &TicketPage{
		Rows:       rows,
		Total:      total,
		Page:       page,
		TotalPages: TotalPages(total),
		RangeStart: start,
		RangeEnd:   end,
	}, nil
}

// ResolveSearches runs the two-step lookups. empty reports that a
// search term matched nothing and the main query must not run.
func ResolveSearches(ctx context.Context, lookup IDResolver, f TicketFilter) (resolved TicketFilter, empty bool, err error) {
	if f.CustomerSearch != "" {
		ids, err := lookup.CustomerIDs(ctx, f.CustomerSearch)
		if err != nil {
			return f, false, fmt.Errorf("resolve customer search: %w", err)
		}
		if len(ids) == 0 {
			return f, true, nil
		}
		f.CustomerIDs = ids
	}
	if f.RaffleSearch != "" {
		ids, err := lookup.RaffleIDs(ctx, f.RaffleSearch)
		if err != nil {
			return f, false, fmt.Errorf("resolve raffle search: %w", err)
		}
		if len(ids) == 0 {
			return f, true, nil
		}
		f.RaffleIDs = ids
	}
	return f, false, nil
}
