package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
	"github.com/krew-solutions/projectdesk/projectdesk/utils/testutils"
)

func TestCloseAndReopenProjects(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	p1 := f.fx.Project(testutils.ProjectRow{Name: "P1"})
	p2 := f.fx.Project(testutils.ProjectRow{Name: "P2"})
	for i := 0; i < 3; i++ {
		f.fx.Task(testutils.TaskRow{ProjectID: p1, Status: domain.Completed})
	}
	f.fx.Task(testutils.TaskRow{ProjectID: p2, Status: domain.Completed})
	f.fx.Task(testutils.TaskRow{ProjectID: p2, Status: domain.InProgress})
	today := testutils.Date(2024, 6, 1)

	closed, err := f.projects.CloseProjectsWithCompletedTasks(f.sess, today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	first, err := f.projects.Get(f.sess, p1)
	require.NoError(t, err)
	require.NotNil(t, first.EndDate)
	assert.True(t, today.Equal(*first.EndDate))
	second, err := f.projects.Get(f.sess, p2)
	require.NoError(t, err)
	assert.Nil(t, second.EndDate)

	closed, err = f.projects.CloseProjectsWithCompletedTasks(f.sess, today)
	require.NoError(t, err)
	assert.Zero(t, closed)

	reopened, err := f.projects.ReopenProjectsWithPendingTasks(f.sess)
	require.NoError(t, err)
	assert.Zero(t, reopened)

	f.fx.Task(testutils.TaskRow{ProjectID: p1, Status: domain.Pending})
	reopened, err = f.projects.ReopenProjectsWithPendingTasks(f.sess)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reopened)
	first, err = f.projects.Get(f.sess, p1)
	require.NoError(t, err)
	assert.Nil(t, first.EndDate)

	reopened, err = f.projects.ReopenProjectsWithPendingTasks(f.sess)
	require.NoError(t, err)
	assert.Zero(t, reopened)
}

func TestFindProjectsWithMinTasksInStatus(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	p1 := f.fx.Project(testutils.ProjectRow{Name: "P1"})
	p2 := f.fx.Project(testutils.ProjectRow{Name: "P2"})
	for i := 0; i < 3; i++ {
		f.fx.Task(testutils.TaskRow{ProjectID: p1, Status: domain.Completed})
	}
	f.fx.Task(testutils.TaskRow{ProjectID: p2, Status: domain.Completed})
	f.fx.Task(testutils.TaskRow{ProjectID: p2, Status: domain.Pending})
	f.fx.Task(testutils.TaskRow{ProjectID: p2, Status: domain.Pending})

	page, err := f.projects.FindProjects(f.sess, ProjectFilter{MinTasks: testutils.Ptr(int64(2)), TaskStatus: "Completed"}, repository.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{p1}, ids(page.Items))
	assert.Equal(t, int64(1), page.Total)

	page, err = f.projects.FindProjects(f.sess, ProjectFilter{MinTasks: testutils.Ptr(int64(3))}, repository.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{p1, p2}, ids(page.Items))

	page, err = f.projects.FindProjects(f.sess, ProjectFilter{TaskStatus: "Pending"}, repository.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{p2}, ids(page.Items))
}

func TestThresholdBoundary(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	none := f.fx.Project(testutils.ProjectRow{Name: "none"})
	one := f.fx.Project(testutils.ProjectRow{Name: "one"})
	two := f.fx.Project(testutils.ProjectRow{Name: "two"})
	f.fx.Comment(one, "")
	f.fx.Comment(two, "")
	f.fx.Comment(two, "")

	cases := []struct {
		min  int64
		want []int64
	}{
		{0, []int64{none, one, two}},
		{-1, []int64{none, one, two}},
		{1, []int64{one, two}},
		{2, []int64{two}},
		{3, []int64{}},
	}
	for _, tc := range cases {
		page, err := f.projects.FindProjects(f.sess, ProjectFilter{MinComments: testutils.Ptr(tc.min)}, repository.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, tc.want, ids(page.Items), "min %d", tc.min)
		assert.Equal(t, int64(len(tc.want)), page.Total, "min %d", tc.min)
	}
}

func TestAbsenceNeutrality(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	start := testutils.Date(2024, 1, 1)
	alpha := f.fx.Project(testutils.ProjectRow{Name: "Alpha", Description: "first", StartDate: &start})
	beta := f.fx.Project(testutils.ProjectRow{Name: "Beta", Description: "second"})
	f.fx.Budget(alpha, 1000, testutils.Ptr(10.0))
	f.fx.Task(testutils.TaskRow{ProjectID: beta})

	criteria, err := f.filters.CompileProjectFilter(ProjectFilter{Name: "  ", MinTasks: testutils.Ptr(int64(0))})
	require.NoError(t, err)
	assert.Nil(t, criteria.Where)
	assert.Empty(t, criteria.Active())

	all, err := f.projects.FindProjects(f.sess, ProjectFilter{}, repository.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{alpha, beta}, ids(all.Items))

	// Each field alone against the same field plus explicitly unset others.
	filters := []ProjectFilter{
		{Name: "alp"},
		{StartFrom: &start},
		{BudgetMin: testutils.Ptr(500.0)},
		{SearchText: "be"},
	}
	for _, filter := range filters {
		with, err := f.projects.FindProjects(f.sess, filter, repository.PageRequest{})
		require.NoError(t, err)
		padded := filter
		padded.Description, padded.MemberEmail, padded.TaskStatus = "", "", ""
		padded.MinComments = testutils.Ptr(int64(0))
		without, err := f.projects.FindProjects(f.sess, padded, repository.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, ids(with.Items), ids(without.Items))
		assert.Less(t, len(with.Items), len(all.Items))
	}
}

func TestExistsAndNotExistsAreComplements(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	var all []int64
	for _, statuses := range [][]domain.TaskStatus{
		nil,
		{domain.Pending},
		{domain.Completed},
		{domain.Completed, domain.Completed, domain.Pending},
	} {
		id := f.fx.Project(testutils.ProjectRow{})
		all = append(all, id)
		for _, st := range statuses {
			f.fx.Task(testutils.TaskRow{ProjectID: id, Status: st})
		}
	}
	pending := func(t domain.TaskPath) s.Visitable { return t.Status.Eq(domain.Pending) }
	p := domain.Projects()

	with, err := f.repos.Projects.List(f.sess, repository.Query{Where: p.Tasks.Any(pending)})
	require.NoError(t, err)
	without, err := f.repos.Projects.List(f.sess, repository.Query{Where: p.Tasks.None(pending)})
	require.NoError(t, err)

	assert.Equal(t, []int64{all[1], all[3]}, ids(with))
	assert.Equal(t, []int64{all[0], all[2]}, ids(without))
	assert.ElementsMatch(t, all, append(ids(with), ids(without)...))
}

func TestTaskCriteriaStrategiesAgree(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	alice := f.fx.User("alice@example.com")
	bob := f.fx.User("bob@example.com")
	backend := f.fx.Tag("backend")
	start := testutils.Date(2024, 2, 1)
	end := testutils.Date(2024, 5, 1)

	p1 := f.fx.Project(testutils.ProjectRow{StartDate: &start, EndDate: &end})
	t1 := f.fx.Task(testutils.TaskRow{ProjectID: p1, Title: "Write API", Status: domain.Completed, AssigneeID: &alice})
	f.fx.TagTask(t1, backend)
	p2 := f.fx.Project(testutils.ProjectRow{})
	f.fx.Task(testutils.TaskRow{ProjectID: p2, Title: "Design UI", Status: domain.Pending, AssigneeID: &bob})
	f.fx.Task(testutils.TaskRow{ProjectID: p2, Title: "api docs", Status: domain.Completed})
	f.fx.Project(testutils.ProjectRow{})

	cases := []struct {
		name     string
		criteria ProjectTaskCriteria
		want     []int64
	}{
		{"empty", ProjectTaskCriteria{}, nil},
		{"status", ProjectTaskCriteria{Status: "Completed"}, []int64{p1, p2}},
		{"title", ProjectTaskCriteria{TitleContains: "API"}, []int64{p1, p2}},
		{"assignee", ProjectTaskCriteria{AssigneeEmail: "bob@"}, []int64{p2}},
		{"tag", ProjectTaskCriteria{TagName: "back"}, []int64{p1}},
		{"dates", ProjectTaskCriteria{StartFrom: &start, EndTo: &end}, []int64{p1}},
		// Status and assignee hold for different tasks of p2.
		{"independent tasks", ProjectTaskCriteria{Status: "Completed", AssigneeEmail: "bob@"}, []int64{p2}},
		{"invalid status dropped", ProjectTaskCriteria{Status: "Done", TagName: "backend"}, []int64{p1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			typed, err := f.filters.CompileProjectTaskCriteria(tc.criteria)
			require.NoError(t, err)
			generic, err := f.filters.CompileProjectTaskCriteriaGeneric(tc.criteria)
			require.NoError(t, err)
			assert.Equal(t, s.Format(typed), s.Format(generic))

			byTyped, err := f.projects.FindByTaskCriteria(f.sess, tc.criteria)
			require.NoError(t, err)
			byGeneric, err := f.projects.FindByTaskCriteriaGeneric(f.sess, tc.criteria)
			require.NoError(t, err)
			assert.Equal(t, ids(byTyped), ids(byGeneric))
			if tc.want != nil {
				assert.Equal(t, tc.want, ids(byTyped))
			} else {
				assert.Len(t, byTyped, 3)
			}
		})
	}
}

func TestEnumPolicy(t *testing.T) {
	t.Run("ignore drops the condition", func(t *testing.T) {
		f := setUp(t, IgnoreInvalidEnum)
		p1 := f.fx.Project(testutils.ProjectRow{Name: "Apollo"})
		f.fx.Project(testutils.ProjectRow{Name: "Gemini"})

		page, err := f.projects.FindProjects(f.sess, ProjectFilter{Name: "apo", TaskStatus: "Archived"}, repository.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []int64{p1}, ids(page.Items))
		assert.Contains(t, f.log.String(), "invalid enum value ignored")
		assert.Contains(t, f.log.String(), "Archived")
	})

	t.Run("reject fails the request", func(t *testing.T) {
		f := setUp(t, RejectInvalidEnum)
		p1 := f.fx.Project(testutils.ProjectRow{})
		f.fx.Task(testutils.TaskRow{ProjectID: p1, Status: domain.Pending})

		_, err := f.projects.FindProjects(f.sess, ProjectFilter{TaskStatus: "Archived"}, repository.PageRequest{})
		assert.ErrorIs(t, err, s.ErrInvalidEnumValue)
		_, err = f.projects.FindByTaskCriteriaGeneric(f.sess, ProjectTaskCriteria{Status: "completed"})
		assert.ErrorIs(t, err, spec.ErrInvalidEnumValue)
		_, err = f.tasks.UpdateStatusByProjectAndDue(f.sess, "", "Archived", nil, nil)
		assert.ErrorIs(t, err, s.ErrInvalidEnumValue)

		task, err := f.tasks.Search(f.sess, "Pending", nil, nil, &p1)
		require.NoError(t, err)
		assert.Len(t, task, 1)
	})
}

func TestFindProjectsByFilterFields(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	alice := f.fx.User("alice@example.com")
	jan, mar := testutils.Date(2024, 1, 1), testutils.Date(2024, 3, 1)

	apollo := f.fx.Project(testutils.ProjectRow{Name: "Apollo", Description: "moon landing", StartDate: &jan, EndDate: &mar})
	f.fx.Budget(apollo, 1000, testutils.Ptr(900.0))
	f.fx.Member(apollo, alice, "owner")
	f.fx.Milestone(apollo, "Liftoff")

	gemini := f.fx.Project(testutils.ProjectRow{Name: "Gemini", Description: "orbit", StartDate: &mar})
	f.fx.Budget(gemini, 200, nil)
	f.fx.Task(testutils.TaskRow{ProjectID: gemini, Title: "Dock capsule"})

	cases := []struct {
		name   string
		filter ProjectFilter
		want   []int64
	}{
		{"name", ProjectFilter{Name: "APOL"}, []int64{apollo}},
		{"description", ProjectFilter{Description: "orb"}, []int64{gemini}},
		{"start range", ProjectFilter{StartFrom: &jan, StartTo: &jan}, []int64{apollo}},
		{"end from", ProjectFilter{EndFrom: &jan}, []int64{apollo}},
		{"end to excludes open projects", ProjectFilter{EndTo: &mar}, []int64{apollo}},
		{"budget min", ProjectFilter{BudgetMin: testutils.Ptr(500.0)}, []int64{apollo}},
		{"budget max", ProjectFilter{BudgetMax: testutils.Ptr(500.0)}, []int64{gemini}},
		{"spent max", ProjectFilter{SpentMax: testutils.Ptr(1000.0)}, []int64{apollo}},
		{"member email", ProjectFilter{MemberEmail: "ALICE@"}, []int64{apollo}},
		{"search task title", ProjectFilter{SearchText: "capsule"}, []int64{gemini}},
		{"search milestone", ProjectFilter{SearchText: "liftoff"}, []int64{apollo}},
		{"min milestones", ProjectFilter{MinMilestones: testutils.Ptr(int64(1))}, []int64{apollo}},
		{"combined", ProjectFilter{StartFrom: &jan, BudgetMax: testutils.Ptr(500.0)}, []int64{gemini}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := f.projects.FindProjects(f.sess, tc.filter, repository.PageRequest{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(page.Items))
		})
	}
}

func TestLoadProjectWithRelations(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	alice := f.fx.User("alice@example.com")
	p := f.fx.Project(testutils.ProjectRow{Name: "Apollo"})
	budget := f.fx.Budget(p, 1000, testutils.Ptr(250.0))
	task := f.fx.Task(testutils.TaskRow{ProjectID: p, Status: domain.InProgress})
	comment := f.fx.Comment(p, "go for launch")
	milestone := f.fx.Milestone(p, "Liftoff")
	member := f.fx.Member(p, alice, "owner")
	bare := f.fx.Project(testutils.ProjectRow{Name: "Gemini"})

	loaded, err := f.projects.Load(f.sess, p)
	require.NoError(t, err)
	assert.Equal(t, "Apollo", loaded.Name)
	require.NotNil(t, loaded.Budget)
	assert.Equal(t, budget, loaded.Budget.ID)
	assert.Equal(t, 1000.0, loaded.Budget.Total)
	assert.Equal(t, testutils.Ptr(250.0), loaded.Budget.Spent)
	assert.Equal(t, []int64{task}, ids(loaded.Tasks))
	assert.Equal(t, domain.InProgress, loaded.Tasks[0].Status)
	assert.Equal(t, []int64{comment}, ids(loaded.Comments))
	assert.Equal(t, "go for launch", loaded.Comments[0].Content)
	assert.Equal(t, []int64{milestone}, ids(loaded.Milestones))
	assert.Equal(t, "Liftoff", loaded.Milestones[0].Name)
	require.Equal(t, []int64{member}, ids(loaded.Members))
	assert.Equal(t, "owner", loaded.Members[0].Role)
	require.NotNil(t, loaded.Members[0].User)
	assert.Equal(t, "alice@example.com", loaded.Members[0].User.Email)

	empty, err := f.projects.Load(f.sess, bare)
	require.NoError(t, err)
	assert.Nil(t, empty.Budget)
	assert.Empty(t, empty.Tasks)
	assert.Empty(t, empty.Members)

	_, err = f.projects.Load(f.sess, bare+100)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInMemoryMatchingAgreesWithSQL(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	alice := f.fx.User("alice@example.com")
	bob := f.fx.User("bob@example.com")
	jan, mar := testutils.Date(2024, 1, 1), testutils.Date(2024, 3, 1)

	apollo := f.fx.Project(testutils.ProjectRow{Name: "Apollo", Description: "moon landing", StartDate: &jan, EndDate: &mar})
	f.fx.Budget(apollo, 1000, testutils.Ptr(900.0))
	f.fx.Member(apollo, alice, "owner")
	f.fx.Milestone(apollo, "Liftoff")
	f.fx.Task(testutils.TaskRow{ProjectID: apollo, Title: "Fuel", Status: domain.Completed})
	f.fx.Task(testutils.TaskRow{ProjectID: apollo, Title: "Launch", Status: domain.Completed})

	gemini := f.fx.Project(testutils.ProjectRow{Name: "Gemini", Description: "orbit", StartDate: &mar})
	f.fx.Budget(gemini, 200, nil)
	f.fx.Member(gemini, bob, "viewer")
	f.fx.Task(testutils.TaskRow{ProjectID: gemini, Title: "Dock capsule", Status: domain.Pending})
	f.fx.Comment(gemini, "hatch sealed")
	f.fx.Comment(gemini, "rendezvous done")

	mercury := f.fx.Project(testutils.ProjectRow{Name: "Mercury", Description: "first flight"})

	var loaded []*domain.Project
	for _, id := range []int64{apollo, gemini, mercury} {
		p, err := f.projects.Load(f.sess, id)
		require.NoError(t, err)
		loaded = append(loaded, p)
	}

	cases := []struct {
		name   string
		filter ProjectFilter
		want   []int64
	}{
		{"no conditions", ProjectFilter{}, []int64{apollo, gemini, mercury}},
		{"name", ProjectFilter{Name: "APOL"}, []int64{apollo}},
		{"start range", ProjectFilter{StartFrom: &jan, StartTo: &jan}, []int64{apollo}},
		{"end to excludes open projects", ProjectFilter{EndTo: &mar}, []int64{apollo}},
		{"budget max", ProjectFilter{BudgetMax: testutils.Ptr(500.0)}, []int64{gemini}},
		{"spent max skips missing spent", ProjectFilter{SpentMax: testutils.Ptr(1000.0)}, []int64{apollo}},
		{"member email", ProjectFilter{MemberEmail: "BOB@"}, []int64{gemini}},
		{"search text", ProjectFilter{SearchText: "rendezvous"}, []int64{gemini}},
		{"search milestone", ProjectFilter{SearchText: "liftoff"}, []int64{apollo}},
		{"task status", ProjectFilter{TaskStatus: "Pending"}, []int64{gemini}},
		{"min tasks in status", ProjectFilter{TaskStatus: "Completed", MinTasks: testutils.Ptr(int64(2))}, []int64{apollo}},
		{"min comments", ProjectFilter{MinComments: testutils.Ptr(int64(2))}, []int64{gemini}},
		{"min milestones", ProjectFilter{MinMilestones: testutils.Ptr(int64(1))}, []int64{apollo}},
		{"nothing matches", ProjectFilter{Name: "Vostok"}, []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := f.projects.FindProjects(f.sess, tc.filter, repository.PageRequest{})
			require.NoError(t, err)
			matched, err := f.projects.Matching(loaded, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(page.Items))
			assert.Equal(t, ids(page.Items), ids(matched))
		})
	}
}

func TestZonedBoundsCompareAsInstants(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	tokyo := time.FixedZone("JST", 9*3600)
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	p := f.fx.Project(testutils.ProjectRow{Name: "Hayabusa", StartDate: &start})
	f.fx.Task(testutils.TaskRow{ProjectID: p, Status: domain.Completed})

	for _, from := range []time.Time{
		time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 17, 0, 0, 0, tokyo),
	} {
		page, err := f.projects.FindProjects(f.sess, ProjectFilter{StartFrom: &from}, repository.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []int64{p}, ids(page.Items), from.String())
	}
	later := time.Date(2024, 1, 1, 20, 0, 0, 0, tokyo)
	page, err := f.projects.FindProjects(f.sess, ProjectFilter{StartFrom: &later}, repository.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	end := time.Date(2024, 6, 1, 9, 0, 0, 0, tokyo)
	closed, err := f.projects.CloseProjectsWithCompletedTasks(f.sess, end)
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)
	page, err = f.projects.FindProjects(f.sess, ProjectFilter{EndFrom: &end, EndTo: &end}, repository.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, []int64{p}, ids(page.Items))
}

func TestFindProjectsPaging(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	names := []string{"Delta", "alpha", "Charlie", "bravo", "Echo"}
	for _, name := range names {
		f.fx.Project(testutils.ProjectRow{Name: name})
	}

	page, err := f.projects.FindProjects(f.sess, ProjectFilter{}, repository.PageRequest{
		Number: 2, Size: 2, Sort: []spec.Order{spec.Desc("id")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, []int64{3, 2}, ids(page.Items))
	assert.Equal(t, 3, page.TotalPages())
	assert.True(t, page.HasNext())

	_, err = f.projects.FindProjects(f.sess, ProjectFilter{}, repository.PageRequest{Sort: []spec.Order{spec.Asc("budget")}})
	assert.ErrorIs(t, err, spec.ErrUnknownSortField)
}

func TestNamedProjectQueries(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	alice := f.fx.User("alice@example.com")
	bob := f.fx.User("bob@example.com")
	backend := f.fx.Tag("backend")
	jan, apr, jun := testutils.Date(2024, 1, 1), testutils.Date(2024, 4, 1), testutils.Date(2024, 6, 1)

	p1 := f.fx.Project(testutils.ProjectRow{StartDate: &jan, EndDate: &apr})
	f.fx.Member(p1, alice, "Owner")
	f.fx.Member(p1, bob, "viewer")
	for i := 0; i < 2; i++ {
		task := f.fx.Task(testutils.TaskRow{ProjectID: p1, Status: domain.Completed})
		f.fx.TagTask(task, backend)
	}

	p2 := f.fx.Project(testutils.ProjectRow{StartDate: &apr, EndDate: &jun})
	f.fx.Member(p2, bob, "owner")
	f.fx.Comment(p2, "late")
	f.fx.Task(testutils.TaskRow{ProjectID: p2, Status: domain.Completed})
	f.fx.Task(testutils.TaskRow{ProjectID: p2, Status: domain.Completed})

	t.Run("min tasks by status and tag", func(t *testing.T) {
		found, err := f.projects.FindWithMinTasksByStatus(f.sess, "Completed", 2, "back")
		require.NoError(t, err)
		assert.Equal(t, []int64{p1}, ids(found))

		found, err = f.projects.FindWithMinTasksByStatus(f.sess, "Completed", 2, "")
		require.NoError(t, err)
		assert.Equal(t, []int64{p1, p2}, ids(found))
	})

	t.Run("without comments having member role", func(t *testing.T) {
		found, err := f.projects.FindWithoutCommentsHavingMemberRole(f.sess, "OWNER")
		require.NoError(t, err)
		assert.Equal(t, []int64{p1}, ids(found))
	})

	t.Run("by members", func(t *testing.T) {
		page, err := f.projects.FindByMembers(f.sess, repository.PageRequest{}, "owner", "bob@")
		require.NoError(t, err)
		// In p1 the owner and bob are different members.
		assert.Equal(t, []int64{p1, p2}, ids(page.Items))

		page, err = f.projects.FindByMembers(f.sess, repository.PageRequest{}, "viewer", "")
		require.NoError(t, err)
		assert.Equal(t, []int64{p1}, ids(page.Items))
	})

	t.Run("active in range", func(t *testing.T) {
		may, dec := testutils.Date(2024, 5, 1), testutils.Date(2024, 12, 1)
		found, err := f.projects.FindActiveInRange(f.sess, &may, &dec)
		require.NoError(t, err)
		assert.Equal(t, []int64{p2}, ids(found))

		found, err = f.projects.FindActiveInRange(f.sess, &jan, &apr)
		require.NoError(t, err)
		assert.Equal(t, []int64{p1, p2}, ids(found))
	})
}

func TestInitStartDateIfHasTasks(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	jan := testutils.Date(2024, 1, 1)
	withTasks := f.fx.Project(testutils.ProjectRow{})
	f.fx.Task(testutils.TaskRow{ProjectID: withTasks})
	started := f.fx.Project(testutils.ProjectRow{StartDate: &jan})
	f.fx.Task(testutils.TaskRow{ProjectID: started})
	f.fx.Project(testutils.ProjectRow{})

	start := testutils.Date(2024, 7, 1)
	n, err := f.projects.InitStartDateIfHasTasks(f.sess, start)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	project, err := f.projects.Get(f.sess, withTasks)
	require.NoError(t, err)
	require.NotNil(t, project.StartDate)
	assert.True(t, start.Equal(*project.StartDate))

	n, err = f.projects.InitStartDateIfHasTasks(f.sess, start)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteProjects(t *testing.T) {
	f := setUp(t, IgnoreInvalidEnum)
	jan, mar, dec := testutils.Date(2024, 1, 1), testutils.Date(2024, 3, 1), testutils.Date(2024, 12, 1)

	t.Run("without tasks between", func(t *testing.T) {
		empty := f.fx.Project(testutils.ProjectRow{StartDate: &jan, EndDate: &mar})
		busy := f.fx.Project(testutils.ProjectRow{StartDate: &jan, EndDate: &mar})
		f.fx.Task(testutils.TaskRow{ProjectID: busy})
		outside := f.fx.Project(testutils.ProjectRow{StartDate: &jan, EndDate: &dec})

		n, err := f.projects.DeleteProjectsWithoutTasksBetween(f.sess, &jan, &mar)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, err = f.projects.Get(f.sess, empty)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		for _, id := range []int64{busy, outside} {
			_, err = f.projects.Get(f.sess, id)
			assert.NoError(t, err)
		}
	})

	t.Run("inconsistent budget", func(t *testing.T) {
		overspent := f.fx.Project(testutils.ProjectRow{})
		f.fx.Budget(overspent, 100, testutils.Ptr(150.0))
		f.fx.Task(testutils.TaskRow{ProjectID: overspent})
		fine := f.fx.Project(testutils.ProjectRow{})
		f.fx.Budget(fine, 100, testutils.Ptr(100.0))
		unknown := f.fx.Project(testutils.ProjectRow{})
		f.fx.Budget(unknown, 100, nil)

		n, err := f.projects.DeleteProjectsWithInconsistentBudget(f.sess)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		tasks, err := f.repos.Tasks.Count(f.sess, repository.Query{Where: domain.Tasks().ProjectID.Eq(overspent)})
		require.NoError(t, err)
		assert.Zero(t, tasks)

		n, err = f.projects.DeleteProjectsWithInconsistentBudget(f.sess)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
