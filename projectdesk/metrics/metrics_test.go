package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/projectdesk/projectdesk/session"
	"github.com/krew-solutions/projectdesk/projectdesk/signals"
)

func TestStatementKind(t *testing.T) {
	cases := map[string]string{
		"SELECT p.id FROM projects AS p": "select",
		"  update tasks SET status = $1": "update",
		"DELETE FROM projects":           "delete",
		"PRAGMA foreign_keys = ON":       "other",
		"":                               "unknown",
	}
	for query, want := range cases {
		assert.Equal(t, want, statementKind(query), query)
	}
}

func TestObserveQueriesThroughSignal(t *testing.T) {
	m := New()
	signal := signals.NewSignal[session.QueryEndedEvent]()
	signal.Attach(m.ObserveQuery)

	signal.Notify(session.QueryEndedEvent{Query: "SELECT 1", ResponseTime: time.Millisecond})
	signal.Notify(session.QueryEndedEvent{Query: "SELECT 2", ResponseTime: 2 * time.Millisecond})
	signal.Notify(session.QueryEndedEvent{Query: "UPDATE tasks SET status = $1", Err: errors.New("boom")})

	assert.Equal(t, 2, testutil.CollectAndCount(m.queries))
	m.BulkApplied("close", 3)
	m.BulkApplied("close", 2)
	assert.Equal(t, float64(5), testutil.ToFloat64(m.affected.WithLabelValues("close")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.BulkApplied("reopen", 1)
	path := filepath.Join(t.TempDir(), "projectdesk.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `projectdesk_bulk_rows_total{operation="reopen"} 1`)
}
