package session

import (
	"time"

	"github.com/krew-solutions/projectdesk/projectdesk/signals"
)

// Observe wraps conn so that every statement notifies signal with a
// QueryEndedEvent. A nil signal leaves conn unwrapped.
func Observe(conn DbConnection, sess DbSession, signal signals.Signal[QueryEndedEvent]) DbConnection {
	if signal == nil {
		return conn
	}
	return &observedConnection{conn: conn, session: sess, signal: signal}
}

type observedConnection struct {
	conn    DbConnection
	session DbSession
	signal  signals.Signal[QueryEndedEvent]
}

func (c *observedConnection) notify(query string, args []any, start time.Time, err error) {
	c.signal.Notify(QueryEndedEvent{
		Query:        query,
		Params:       args,
		Session:      c.session,
		ResponseTime: time.Since(start),
		Err:          err,
	})
}

func (c *observedConnection) Exec(query string, args ...any) (Result, error) {
	start := time.Now()
	r, err := c.conn.Exec(query, args...)
	c.notify(query, args, start, err)
	return r, err
}

func (c *observedConnection) Query(query string, args ...any) (Rows, error) {
	start := time.Now()
	rows, err := c.conn.Query(query, args...)
	c.notify(query, args, start, err)
	return rows, err
}

func (c *observedConnection) QueryRow(query string, args ...any) Row {
	start := time.Now()
	row := c.conn.QueryRow(query, args...)
	c.notify(query, args, start, row.Err())
	return row
}
