package testutils

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/krew-solutions/projectdesk/projectdesk/config"
	"github.com/krew-solutions/projectdesk/projectdesk/projects/infrastructure"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	pgsession "github.com/krew-solutions/projectdesk/projectdesk/session/pgx"
	sqlsession "github.com/krew-solutions/projectdesk/projectdesk/session/sql"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
)

// NewPgSessionPool connects to the database described by the DB_*
// environment variables.
func NewPgSessionPool() (*pgsession.SessionPool, error) {
	c, err := config.Load("")
	if err != nil {
		return nil, err
	}
	return pgsession.Connect(context.Background(), c.Database.DSN())
}

// NewSQLiteSession opens a private in-memory database with the project
// schema. A single connection keeps the database alive and makes the
// foreign key pragma stick.
func NewSQLiteSession(tb testing.TB, opts ...sqlsession.Option) *sqlsession.Session {
	tb.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(tb, err)
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(tb, err)

	sess := sqlsession.NewSession(context.Background(), db, opts...)
	require.NoError(tb, infrastructure.Migrate(sess, infrastructure.SQLite))
	return sess
}

// NewSQLiteRepositories builds the project stores with SQLite placeholders.
func NewSQLiteRepositories(tb testing.TB, opts ...repository.Option) *infrastructure.Repositories {
	tb.Helper()
	model, err := infrastructure.NewModel()
	require.NoError(tb, err)
	opts = append([]repository.Option{repository.WithPlaceholder(spec.Question)}, opts...)
	repos, err := infrastructure.NewRepositories(model, opts...)
	require.NoError(tb, err)
	return repos
}
