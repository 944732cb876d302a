package query

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_CacheHitSkipsQuery(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	// The nil app proves the cache hit never reaches the record layer.
	lookup := NewLookup(nil, db, 50, 30*time.Second)

	mock.ExpectGet("lookup:customers:bob").SetVal(`["c1","c2"]`)

	ids, err := lookup.CustomerIDs(context.Background(), "bob")
	require.NoError(t, err)

	assert.Equal(t, []string{"c1", "c2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookup_RaffleCacheHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	lookup := NewLookup(nil, db, 50, 30*time.Second)

	mock.ExpectGet("lookup:raffles:ps5").SetVal(`[]`)

	ids, err := lookup.RaffleIDs(context.Background(), "ps5")
	require.NoError(t, err)

	assert.Empty(t, ids, "no-match lookup returns an empty list, not an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}
