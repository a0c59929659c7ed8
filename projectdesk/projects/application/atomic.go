package application

import (
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

// atomically runs a bulk statement in its own transaction. On success the
// rows cached by the outer session are evicted as well.
func atomically(sess session.DbSession, op func(session.DbSession) (int64, error)) (int64, error) {
	var affected int64
	err := sess.Atomic(func(tx session.Session) (err error) {
		affected, err = op(tx.(session.DbSession))
		return err
	})
	if err != nil {
		return 0, err
	}
	repository.Evict(sess)
	return affected, nil
}
