package application

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/infrastructure"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	sqlsession "github.com/krew-solutions/projectdesk/projectdesk/session/sql"
	"github.com/krew-solutions/projectdesk/projectdesk/utils/testutils"
)

type fixture struct {
	sess     *sqlsession.Session
	fx       *testutils.Fixtures
	repos    *infrastructure.Repositories
	filters  *FilterCompiler
	projects *ProjectService
	tasks    *TaskService
	users    *UserService
	log      *bytes.Buffer
}

func setUp(t *testing.T, policy EnumPolicy) *fixture {
	t.Helper()
	log := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(log, &slog.HandlerOptions{Level: slog.LevelWarn}))
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	sess := testutils.NewSQLiteSession(t)
	repos := testutils.NewSQLiteRepositories(t, repository.WithLogger(quiet))
	filters, err := NewFilterCompiler(repos.Model, policy, logger)
	require.NoError(t, err)
	return &fixture{
		sess:     sess,
		fx:       testutils.NewFixtures(t, sess),
		repos:    repos,
		filters:  filters,
		projects: NewProjectService(repos, filters, logger),
		tasks:    NewTaskService(repos, filters, logger),
		users:    NewUserService(repos, filters, logger),
		log:      log,
	}
}

func ids[T repository.Entity](items []T) []int64 {
	result := make([]int64, 0, len(items))
	for _, item := range items {
		result = append(result, item.Identity())
	}
	return result
}
