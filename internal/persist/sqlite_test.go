package persist

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openTestJournal(t *testing.T) (*SQLiteJournal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "journal.sqlite")
	j, err := OpenSQLite(context.Background(), path, zaptest.NewLogger(t))
	require.NoError(t, err)
	return j, path
}

func TestSQLiteJournalAppend(t *testing.T) {
	j, _ := openTestJournal(t)
	defer j.Close()
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, nil))
	require.NoError(t, j.Append(ctx, []EventRow{
		{Tick: 1, Kind: "tile_type_changed", Payload: json.RawMessage(`{"x":1,"y":2,"type":"Floor"}`)},
		{Tick: 2, Kind: "job_created", Payload: json.RawMessage(`{"job_id":"1.1"}`)},
		{Tick: 2, Kind: "tile_type_changed", Payload: json.RawMessage(`{"x":2,"y":2,"type":"Floor"}`)},
	}))

	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := j.Rows(ctx, "tile_type_changed")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, uint64(1), rows[0].Tick)
	assert.JSONEq(t, `{"x":2,"y":2,"type":"Floor"}`, string(rows[1].Payload))

	all, err := j.Rows(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "job_created", all[1].Kind)
}

func TestSQLiteJournalReopenKeepsRows(t *testing.T) {
	j, path := openTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.Append(ctx, []EventRow{{Tick: 7, Kind: "object_placed", Payload: json.RawMessage(`{}`)}}))
	require.NoError(t, j.Close())

	again, err := OpenSQLite(ctx, path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer again.Close()

	n, err := again.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "migrations are idempotent and data survives")
}

func TestSQLiteJournalCancelledContext(t *testing.T) {
	j, _ := openTestJournal(t)
	defer j.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := j.Append(ctx, []EventRow{{Tick: 1, Kind: "x", Payload: json.RawMessage(`{}`)}})
	assert.Error(t, err)

	n, err := j.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenSQLiteEmptyPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "", zaptest.NewLogger(t))
	assert.Error(t, err)
}

var (
	_ Journal = (*SQLiteJournal)(nil)
	_ Journal = (*PostgresJournal)(nil)
)
