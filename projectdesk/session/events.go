package session

import (
	"time"
)

// QueryEndedEvent is emitted after a statement completes, successfully or not.
type QueryEndedEvent struct {
	Query        string
	Params       []any
	Session      DbSession
	ResponseTime time.Duration
	Err          error
}
