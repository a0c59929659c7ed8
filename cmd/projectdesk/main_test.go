package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/application"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	sqlsession "github.com/krew-solutions/projectdesk/projectdesk/session/sql"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
	"github.com/krew-solutions/projectdesk/projectdesk/utils/testutils"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out, stderr bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseTime(t *testing.T) {
	for _, value := range []string{"2024-03-01", "2024-03-01T00:00:00", "2024-03-01T02:00:00+02:00"} {
		got, err := parseTime(value)
		require.NoError(t, err, value)
		assert.True(t, got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), value)
	}
	_, err := parseTime("March 1st")
	assert.Error(t, err)

	none, err := optionalTime(" ")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, []spec.Order{spec.Asc("name"), spec.Desc("id"), spec.Asc("startDate")}, parseSort("name, -id,+startDate,"))
	assert.Empty(t, parseSort(""))
}

func TestCommandsAgainstSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projectdesk.db")
	_, err := execute(t, "--sqlite", path, "migrate")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	fx := testutils.NewFixtures(t, sqlsession.NewSession(context.Background(), db))
	apollo := fx.Project(testutils.ProjectRow{Name: "Apollo", Description: "-"})
	fx.Task(testutils.TaskRow{ProjectID: apollo, Title: "launch", Description: "-", Status: "Completed"})
	gemini := fx.Project(testutils.ProjectRow{Name: "Gemini", Description: "-"})
	fx.Task(testutils.TaskRow{ProjectID: gemini, Title: "dock", Description: "-", Status: "Pending"})

	metricsPath := filepath.Join(t.TempDir(), "projectdesk.prom")
	out, err := execute(t, "--sqlite", path, "--metrics-file", metricsPath, "projects", "close", "--at", "2024-06-01")
	require.NoError(t, err)
	assert.Contains(t, out, "affected: 1")
	exposition, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(exposition), `projectdesk_bulk_rows_total{operation="close"} 1`)
	assert.Contains(t, string(exposition), `projectdesk_query_duration_seconds_count{kind="update",outcome="ok"} 1`)

	out, err = execute(t, "--sqlite", path, "projects", "search", "--name", "gem")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Gemini")
	assert.NotContains(t, out, "Apollo")
	assert.Contains(t, out, "total: 1")

	out, err = execute(t, "--sqlite", path, "projects", "by-tasks", "--status", "Pending", "--generic")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Gemini")
	assert.NotContains(t, out, "Apollo")

	_, err = execute(t, "--sqlite", path, "tasks", "reassign", "--to-user", "1")
	assert.ErrorIs(t, err, application.ErrMissingArgument)

	_, err = execute(t, "--sqlite", path, "projects", "active", "--from", "yesterday")
	assert.Error(t, err)
}

func TestShowAndGetCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projectdesk.db")
	_, err := execute(t, "--sqlite", path, "migrate")
	require.NoError(t, err)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	fx := testutils.NewFixtures(t, sqlsession.NewSession(context.Background(), db))
	alice := fx.User("alice@example.com")
	apollo := fx.Project(testutils.ProjectRow{Name: "Apollo", Description: "-"})
	budget := fx.Budget(apollo, 1000, testutils.Ptr(250.0))
	milestone := fx.Milestone(apollo, "Liftoff")
	comment := fx.Comment(apollo, "go for launch")
	member := fx.Member(apollo, alice, "owner")
	fx.Task(testutils.TaskRow{ProjectID: apollo, Title: "launch", Description: "-", Status: "Completed"})

	out, err := execute(t, "--sqlite", path, "projects", "show", strconv.FormatInt(apollo, 10))
	require.NoError(t, err)
	for _, want := range []string{"name: Apollo", "total: 1000", "spent: 250", "email: alice@example.com", "role: owner", "title: launch", "name: Liftoff", "content: go for launch"} {
		assert.Contains(t, out, want)
	}

	for _, tc := range []struct {
		entity string
		id     int64
		want   string
	}{
		{"Budget", budget, "total: 1000"},
		{"milestone", milestone, "name: Liftoff"},
		{"COMMENT", comment, "content: go for launch"},
		{"projectmember", member, "role: owner"},
		{"project", apollo, "name: Apollo"},
	} {
		out, err := execute(t, "--sqlite", path, "get", tc.entity, strconv.FormatInt(tc.id, 10))
		require.NoError(t, err, tc.entity)
		assert.Contains(t, out, tc.want, tc.entity)
	}

	_, err = execute(t, "--sqlite", path, "get", "spaceship", "1")
	assert.ErrorIs(t, err, spec.ErrUnknownEntity)
	_, err = execute(t, "--sqlite", path, "get", "tag", "1")
	assert.ErrorIs(t, err, spec.ErrUnknownEntity)
	_, err = execute(t, "--sqlite", path, "get", "budget", "999")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
