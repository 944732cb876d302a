package query

import (
	"context"
	"fmt"
	"log"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"snapwin-admin/models"
)

// RecordTicketSource is the production TicketSource backed by the
// tickets collection. Expanded raffle/customer embeds ride along so a
// list page renders without per-row queries.
type RecordTicketSource struct {
	app core.App
}

func NewRecordTicketSource(app core.App) *RecordTicketSource {
	return &RecordTicketSource{app: app}
}

func (s *RecordTicketSource) Count(ctx context.Context, exprs []dbx.Expression) (int, error) {
	q := s.app.RecordQuery("tickets").Select("COUNT(*)")
	for _, expr := range exprs {
		q.AndWhere(expr)
	}

	var total int
	if err := q.WithContext(ctx).Row(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *RecordTicketSource) Fetch(ctx context.Context, exprs []dbx.Expression, limit, offset int) ([]models.Ticket, error) {
	rows, _, err := s.fetchPage(ctx, exprs, limit, offset)
	return rows, err
}

// fetchPage also reports the raw record count, which can exceed
// len(rows) when malformed rows were dropped.
func (s *RecordTicketSource) fetchPage(ctx context.Context, exprs []dbx.Expression, limit, offset int) ([]models.Ticket, int, error) {
	q := s.app.RecordQuery("tickets")
	for _, expr := range exprs {
		q.AndWhere(expr)
	}
	q.OrderBy("created DESC").
		Limit(int64(limit)).
		Offset(int64(offset))

	records := []*core.Record{}
	if err := q.WithContext(ctx).All(&records); err != nil {
		return nil, 0, err
	}

	if errs := s.app.ExpandRecords(records, []string{"raffle", "customer"}, nil); len(errs) > 0 {
		for rel, err := range errs {
			log.Printf("expand %s failed: %v", rel, err)
		}
	}

	rows := make([]models.Ticket, 0, len(records))
	for _, rec := range records {
		ticket, err := models.TicketFromRecord(rec)
		if err != nil {
			// Malformed rows are dropped, not rendered.
			log.Printf("dropping ticket row: %v", err)
			continue
		}
		rows = append(rows, ticket)
	}
	return rows, len(records), nil
}

// FetchAll streams the full filtered set in batches, for CSV export.
func (s *RecordTicketSource) FetchAll(ctx context.Context, exprs []dbx.Expression, visit func(models.Ticket) error) error {
	const batch = 500

	for offset := 0; ; offset += batch {
		rows, fetched, err := s.fetchPage(ctx, exprs, batch, offset)
		if err != nil {
			return fmt.Errorf("fetch batch at %d: %w", offset, err)
		}
		for _, row := range rows {
			if err := visit(row); err != nil {
				return err
			}
		}
		if fetched < batch {
			return nil
		}
	}
}
