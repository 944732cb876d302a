package query

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snapwin-admin/models"
)

type fakeStreamer struct {
	rows   []models.Ticket
	called int
}

func (f *fakeStreamer) FetchAll(_ context.Context, _ []dbx.Expression, visit func(models.Ticket) error) error {
	f.called++
	for _, row := range f.rows {
		if err := visit(row); err != nil {
			return err
		}
	}
	return nil
}

func TestWriteCSV(t *testing.T) {
	completed := time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)
	streamer := &fakeStreamer{rows: []models.Ticket{
		{
			ID:            "t1",
			RaffleID:      "r1",
			Raffle:        &models.RaffleRef{ID: "r1", ItemName: "PS5 Bundle"},
			Customer:      &models.CustomerRef{ID: "c1", Name: "Alice", Email: "alice@example.com"},
			CustomerID:    "c1",
			Number:        7,
			Code:          "SNAP-0007",
			PaymentStatus: models.PaymentCompleted,
			Amount:        decimal.RequireFromString("2.50"),
			Currency:      "eur",
			CompletedAt:   &completed,
			Created:       time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:            "t2",
			PaymentStatus: models.PaymentPending,
			Amount:        decimal.NewFromInt(2),
			Created:       time.Date(2024, 1, 30, 9, 0, 0, 0, time.UTC),
		},
	}}

	var buf bytes.Buffer
	exporter := NewExporter(streamer, &fakeResolver{})
	require.NoError(t, exporter.WriteCSV(context.Background(), TicketFilter{}, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "t1", records[1][0])
	assert.Equal(t, "PS5 Bundle", records[1][2])
	assert.Equal(t, "alice@example.com", records[1][5])
	assert.Equal(t, "2.5", records[1][9])
	assert.Equal(t, "2024-02-01T10:30:00Z", records[1][14])
	assert.Equal(t, "t2", records[2][0])
	assert.Equal(t, "", records[2][2], "missing embed renders empty")
}

func TestWriteCSV_EmptyLookupExportsHeaderOnly(t *testing.T) {
	streamer := &fakeStreamer{rows: failedTickets(5)}
	exporter := NewExporter(streamer, &fakeResolver{})

	var buf bytes.Buffer
	err := exporter.WriteCSV(context.Background(), TicketFilter{CustomerSearch: "nomatch"}, &buf)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 0, streamer.called)
}
