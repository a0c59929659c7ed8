package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type statementEvent struct {
	query string
}

func TestSignalNotifiesInAttachmentOrder(t *testing.T) {
	s := NewSignal[statementEvent]()
	var seen []string
	s.Attach(func(e statementEvent) { seen = append(seen, "log:"+e.query) }, "log")
	s.Attach(func(e statementEvent) { seen = append(seen, "count:"+e.query) }, "count")

	s.Notify(statementEvent{"SELECT 1"})

	assert.Equal(t, []string{"log:SELECT 1", "count:SELECT 1"}, seen)
}

func TestSignalAttachIsIdempotentPerID(t *testing.T) {
	s := NewSignal[statementEvent]()
	calls := 0
	observer := Observer[statementEvent](func(statementEvent) { calls++ })
	s.Attach(observer, "obs")
	s.Attach(observer, "obs")

	s.Notify(statementEvent{})

	assert.Equal(t, 1, calls)
}

func TestSignalDetach(t *testing.T) {
	s := NewSignal[statementEvent]()
	calls := 0
	observer := Observer[statementEvent](func(statementEvent) { calls++ })

	detach := s.Attach(observer)
	s.Notify(statementEvent{})
	detach()
	s.Notify(statementEvent{})
	s.Detach(observer, "unknown")

	assert.Equal(t, 1, calls)
}

func TestCompositeSignal(t *testing.T) {
	first, second := NewSignal[statementEvent](), NewSignal[statementEvent]()
	composite := NewCompositeSignal[statementEvent](first, second)
	calls := 0

	detach := composite.Attach(func(statementEvent) { calls++ }, "obs")
	first.Notify(statementEvent{})
	second.Notify(statementEvent{})
	assert.Equal(t, 2, calls)

	detach()
	composite.Notify(statementEvent{})
	assert.Equal(t, 2, calls)
}
