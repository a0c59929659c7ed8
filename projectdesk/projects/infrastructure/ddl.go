package infrastructure

import (
	"embed"
	"strings"

	"github.com/pkg/errors"

	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

//go:embed schema_*.sql
var schemas embed.FS

// Migrate creates the project tables if they do not exist yet.
func Migrate(sess session.DbSession, dialect Dialect) error {
	ddl, err := schemas.ReadFile("schema_" + string(dialect) + ".sql")
	if err != nil {
		return errors.Wrapf(err, "no schema for dialect \"%s\"", dialect)
	}
	conn := sess.Connection()
	for _, statement := range strings.Split(string(ddl), ";") {
		statement = strings.TrimSpace(statement)
		if statement == "" {
			continue
		}
		if _, err := conn.Exec(statement); err != nil {
			return errors.Wrapf(err, "migrate: %.60s", statement)
		}
	}
	return nil
}
