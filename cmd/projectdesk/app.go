package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/krew-solutions/projectdesk/projectdesk/config"
	"github.com/krew-solutions/projectdesk/projectdesk/metrics"
	"github.com/krew-solutions/projectdesk/projectdesk/projects/application"
	"github.com/krew-solutions/projectdesk/projectdesk/projects/infrastructure"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
	pgsession "github.com/krew-solutions/projectdesk/projectdesk/session/pgx"
	sqlsession "github.com/krew-solutions/projectdesk/projectdesk/session/sql"
	"github.com/krew-solutions/projectdesk/projectdesk/signals"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
)

type globalFlags struct {
	configPath  string
	sqlitePath  string
	metricsPath string
}

// app holds the services of one CLI invocation.
type app struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	pool    session.SessionPool
	dialect infrastructure.Dialect
	close   func()

	repos    *infrastructure.Repositories
	projects *application.ProjectService
	tasks    *application.TaskService
	users    *application.UserService
}

func newApp(ctx context.Context, flags *globalFlags, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	policy, err := application.ParseEnumPolicy(cfg.EnumPolicy)
	if err != nil {
		return nil, err
	}

	a := &app{logger: logger, metrics: metrics.New()}
	queries := signals.NewSignal[session.QueryEndedEvent]()
	queries.Attach(logQueries(logger))
	queries.Attach(a.metrics.ObserveQuery)

	storeOpts := append(cfg.StoreOptions(), repository.WithLogger(logger))
	if flags.sqlitePath != "" {
		db, err := openSQLite(ctx, flags.sqlitePath)
		if err != nil {
			return nil, err
		}
		a.pool = sqlsession.NewSessionPool(db,
			sqlsession.WithIdentityMap(cfg.IdentityMap.Size, cfg.Isolation()),
			sqlsession.WithQueryObserver(queries),
		)
		a.dialect = infrastructure.SQLite
		a.close = func() { _ = db.Close() }
		storeOpts = append(storeOpts, repository.WithPlaceholder(spec.Question))
	} else {
		pool, err := pgsession.Connect(ctx, cfg.Database.DSN(),
			pgsession.WithIdentityMap(cfg.IdentityMap.Size, cfg.Isolation()),
			pgsession.WithQueryObserver(queries),
		)
		if err != nil {
			return nil, errors.Wrap(err, "connect")
		}
		a.pool = pool
		a.dialect = infrastructure.Postgres
		a.close = pool.Close
	}

	model, err := infrastructure.NewModel()
	if err != nil {
		a.close()
		return nil, err
	}
	repos, err := infrastructure.NewRepositories(model, storeOpts...)
	if err != nil {
		a.close()
		return nil, err
	}
	filters, err := application.NewFilterCompiler(model, policy, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.repos = repos
	a.projects = application.NewProjectService(repos, filters, logger)
	a.tasks = application.NewTaskService(repos, filters, logger)
	a.users = application.NewUserService(repos, filters, logger)
	logger.Debug("ready", "dialect", a.dialect, "enum_policy", policy.String())
	return a, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	// One connection keeps the pragma in effect for every statement.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "enable foreign keys")
	}
	return db, nil
}

// bulkApplied reports the outcome of a bulk operation.
func (a *app) bulkApplied(operation string, affected int64) {
	a.metrics.BulkApplied(operation, affected)
	a.logger.Info("bulk operation applied", "operation", operation, "affected", affected)
}

// run hands fn a database session from the pool.
func (a *app) run(ctx context.Context, fn func(session.DbSession) error) error {
	return a.pool.Session(ctx, func(s session.Session) error {
		return fn(s.(session.DbSession))
	})
}

func logQueries(logger *slog.Logger) signals.Observer[session.QueryEndedEvent] {
	return func(e session.QueryEndedEvent) {
		if e.Err != nil {
			logger.Warn("query failed", "query", e.Query, "elapsed", e.ResponseTime, "error", e.Err)
			return
		}
		logger.Debug("query", "query", e.Query, "params", e.Params, "elapsed", e.ResponseTime)
	}
}
