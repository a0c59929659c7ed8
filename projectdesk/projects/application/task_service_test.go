package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	"github.com/krew-solutions/projectdesk/projectdesk/utils/testutils"
)

type taskWorld struct {
	*fixture
	alice, bob      int64
	apollo, gemini  int64
	design, build   int64
	review, backlog int64
	backend, urgent int64
}

func newTaskWorld(t *testing.T, policy EnumPolicy) taskWorld {
	f := setUp(t, policy)
	w := taskWorld{fixture: f}
	w.alice = f.fx.User("alice@example.com")
	w.bob = f.fx.User("bob@example.com")
	w.apollo = f.fx.Project(testutils.ProjectRow{Name: "Apollo"})
	w.gemini = f.fx.Project(testutils.ProjectRow{Name: "Gemini"})
	w.backend = f.fx.Tag("backend")
	w.urgent = f.fx.Tag("urgent")

	mar, may := testutils.Date(2024, 3, 1), testutils.Date(2024, 5, 1)
	w.design = f.fx.Task(testutils.TaskRow{ProjectID: w.apollo, Title: "Design schema", Description: "-", Status: domain.Completed, DueDate: &mar, AssigneeID: &w.alice})
	w.build = f.fx.Task(testutils.TaskRow{ProjectID: w.apollo, Title: "Build service", Description: "-", Status: domain.InProgress, DueDate: &may, AssigneeID: &w.alice})
	w.review = f.fx.Task(testutils.TaskRow{ProjectID: w.gemini, Title: "Review release", Description: "-", Status: domain.Pending, DueDate: &mar, AssigneeID: &w.bob})
	w.backlog = f.fx.Task(testutils.TaskRow{ProjectID: w.gemini, Title: "Backlog grooming", Description: "-", Status: domain.Pending})
	f.fx.TagTask(w.design, w.backend)
	f.fx.TagTask(w.build, w.backend)
	f.fx.TagTask(w.review, w.urgent)
	return w
}

func TestFindTasks(t *testing.T) {
	w := newTaskWorld(t, IgnoreInvalidEnum)
	apr := testutils.Date(2024, 4, 1)

	cases := []struct {
		name   string
		filter TaskFilter
		want   []int64
	}{
		{"empty", TaskFilter{}, []int64{w.design, w.build, w.review, w.backlog}},
		{"title", TaskFilter{Title: "SERVICE"}, []int64{w.build}},
		{"status", TaskFilter{Status: "Pending"}, []int64{w.review, w.backlog}},
		{"invalid status ignored", TaskFilter{Status: "Blocked", ProjectName: "apo"}, []int64{w.design, w.build}},
		{"tag", TaskFilter{TagName: "back"}, []int64{w.design, w.build}},
		{"assignee", TaskFilter{AssigneeEmail: "bob@"}, []int64{w.review}},
		{"due range", TaskFilter{DueTo: &apr}, []int64{w.design, w.review}},
		{"due from excludes undated", TaskFilter{DueFrom: &apr}, []int64{w.build}},
		{"search by tag", TaskFilter{SearchText: "urgent"}, []int64{w.review}},
		{"search by project", TaskFilter{SearchText: "gemini"}, []int64{w.review, w.backlog}},
		{"search by assignee", TaskFilter{SearchText: "alice"}, []int64{w.design, w.build}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := w.tasks.FindTasks(w.sess, tc.filter, repository.PageRequest{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(page.Items))
			assert.Equal(t, int64(len(tc.want)), page.Total)
		})
	}
}

func TestSearchTasks(t *testing.T) {
	w := newTaskWorld(t, IgnoreInvalidEnum)

	found, err := w.tasks.Search(w.sess, "", &w.backend, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{w.design, w.build}, ids(found))

	found, err = w.tasks.Search(w.sess, "InProgress", &w.backend, &w.alice, &w.apollo)
	require.NoError(t, err)
	assert.Equal(t, []int64{w.build}, ids(found))

	found, err = w.tasks.Search(w.sess, "", nil, &w.bob, &w.apollo)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUpdateStatusByProjectAndDue(t *testing.T) {
	w := newTaskWorld(t, IgnoreInvalidEnum)
	apr := testutils.Date(2024, 4, 1)

	n, err := w.tasks.UpdateStatusByProjectAndDue(w.sess, "Pending", "Completed", &w.gemini, &apr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	task, err := w.tasks.Get(w.sess, w.review)
	require.NoError(t, err)
	assert.Equal(t, domain.Completed, task.Status)

	n, err = w.tasks.UpdateStatusByProjectAndDue(w.sess, "Pending", "Completed", &w.gemini, &apr)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Unknown source status is dropped, unknown destination falls back to Pending.
	n, err = w.tasks.UpdateStatusByProjectAndDue(w.sess, "Nope", "Nope", &w.apollo, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	for _, id := range []int64{w.design, w.build} {
		task, err := w.tasks.Get(w.sess, id)
		require.NoError(t, err)
		assert.Equal(t, domain.Pending, task.Status)
	}
}

func TestDeleteByStatusAndDueBefore(t *testing.T) {
	w := newTaskWorld(t, IgnoreInvalidEnum)
	apr := testutils.Date(2024, 4, 1)

	n, err := w.tasks.DeleteByStatusAndDueBefore(w.sess, "Pending", &apr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = w.tasks.Get(w.sess, w.review)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	left, err := w.repos.Tasks.Count(w.sess, repository.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), left)
}

func TestReassignTasks(t *testing.T) {
	w := newTaskWorld(t, RejectInvalidEnum)

	_, err := w.tasks.ReassignTasks(w.sess, nil, &w.bob, nil, "")
	assert.ErrorIs(t, err, ErrMissingArgument)
	_, err = w.tasks.ReassignTasks(w.sess, &w.alice, nil, nil, "")
	assert.ErrorIs(t, err, ErrMissingArgument)

	n, err := w.tasks.ReassignTasks(w.sess, &w.alice, &w.bob, &w.apollo, "InProgress")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	task, err := w.tasks.Get(w.sess, w.build)
	require.NoError(t, err)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, w.bob, *task.AssigneeID)

	n, err = w.tasks.ReassignTasks(w.sess, &w.alice, &w.bob, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	found, err := w.tasks.Search(w.sess, "", nil, &w.bob, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{w.design, w.build, w.review}, ids(found))
}
