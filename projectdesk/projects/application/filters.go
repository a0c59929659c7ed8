package application

import (
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
)

// Zero values mean "unset" in every filter: blank strings, nil pointers and
// nil thresholds contribute no condition.

type ProjectFilter struct {
	Name        string
	Description string
	MemberEmail string
	SearchText  string

	StartFrom *time.Time
	StartTo   *time.Time
	EndFrom   *time.Time
	EndTo     *time.Time

	BudgetMin *float64
	BudgetMax *float64
	SpentMax  *float64

	// MinTasks counts tasks in TaskStatus when it is set. TaskStatus alone
	// requires one such task.
	MinTasks      *int64
	MinMilestones *int64
	MinComments   *int64
	TaskStatus    string
}

type TaskFilter struct {
	Title         string
	Description   string
	Status        string
	TagName       string
	AssigneeEmail string
	ProjectName   string
	SearchText    string

	DueFrom *time.Time
	DueTo   *time.Time
}

// ProjectTaskCriteria selects projects by properties of their tasks. Each
// task condition is existential on its own, so different tasks may satisfy
// different conditions.
type ProjectTaskCriteria struct {
	Status        string
	TitleContains string
	AssigneeEmail string
	TagName       string

	StartFrom *time.Time
	EndTo     *time.Time
}

type UserFilter struct {
	RoleName    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

func ifText(value string, build func(string) s.Visitable) s.Visitable {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return build(value)
}

func ifTime(value *time.Time, build func(time.Time) s.Visitable) s.Visitable {
	if value == nil {
		return nil
	}
	return build(*value)
}

func ifNumber(value *float64, build func(float64) s.Visitable) s.Visitable {
	if value == nil {
		return nil
	}
	return build(*value)
}

func ifInteger(value *int64, build func(int64) s.Visitable) s.Visitable {
	if value == nil {
		return nil
	}
	return build(*value)
}

func minimum(value *int64) int64 {
	if value == nil {
		return 0
	}
	return *value
}

// genericPaths are the name-based paths of the project-task search,
// resolved once against the model.
type genericPaths struct {
	startDate     spec.Path
	endDate       spec.Path
	taskStatus    spec.Path
	taskTitle     spec.Path
	assigneeEmail spec.Path
	tagName       spec.Path
}

// FilterCompiler turns request filters into criteria over the project
// schema.
type FilterCompiler struct {
	policy  EnumPolicy
	logger  *slog.Logger
	generic genericPaths
}

func NewFilterCompiler(model *spec.Model, policy EnumPolicy, logger *slog.Logger) (*FilterCompiler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var paths genericPaths
	for _, p := range []struct {
		target *spec.Path
		expr   string
	}{
		{&paths.startDate, "startDate"},
		{&paths.endDate, "endDate"},
		{&paths.taskStatus, "tasks.any.status"},
		{&paths.taskTitle, "tasks.any.title"},
		{&paths.assigneeEmail, "tasks.any.assignee.email"},
		{&paths.tagName, "tasks.any.tags.any.name"},
	} {
		resolved, err := model.Path("Project", p.expr)
		if err != nil {
			return nil, err
		}
		*p.target = resolved
	}
	return &FilterCompiler{policy: policy, logger: logger, generic: paths}, nil
}

func (c *FilterCompiler) Policy() EnumPolicy {
	return c.policy
}

// CompileProjectFilter builds the project search criteria.
func (c *FilterCompiler) CompileProjectFilter(f ProjectFilter) (s.Criteria, error) {
	p := domain.Projects()
	status, hasStatus, err := c.policy.taskStatus(c.logger, f.TaskStatus)
	if err != nil {
		return s.Criteria{}, err
	}
	inStatus := func(t domain.TaskPath) s.Visitable {
		if !hasStatus {
			return nil
		}
		return t.Status.Eq(status)
	}

	where := s.AllOf(
		ifText(f.Name, p.Name.Contains),
		ifText(f.Description, p.Description.Contains),
		ifTime(f.StartFrom, p.StartDate.AtOrAfter),
		ifTime(f.StartTo, p.StartDate.AtOrBefore),
		ifTime(f.EndFrom, p.EndDate.AtOrAfter),
		ifTime(f.EndTo, p.EndDate.AtOrBefore),
		p.Budget.Has(func(b domain.BudgetPath) s.Visitable {
			return s.AllOf(
				ifNumber(f.BudgetMin, b.Total.Gte),
				ifNumber(f.BudgetMax, b.Total.Lte),
				ifNumber(f.SpentMax, b.Spent.Lte),
			)
		}),
		ifText(f.MemberEmail, func(email string) s.Visitable {
			return p.Members.Any(func(m domain.MemberPath) s.Visitable {
				return m.User.Has(func(u domain.UserPath) s.Visitable {
					return u.Email.Contains(email)
				})
			})
		}),
		ifText(f.SearchText, func(text string) s.Visitable {
			return s.AnyOf(
				p.Name.Contains(text),
				p.Description.Contains(text),
				p.Tasks.Any(func(t domain.TaskPath) s.Visitable { return t.Title.Contains(text) }),
				p.Milestones.Any(func(m domain.MilestonePath) s.Visitable { return m.Name.Contains(text) }),
				p.Comments.Any(func(cm domain.CommentPath) s.Visitable { return cm.Content.Contains(text) }),
			)
		}),
	)
	if hasStatus && minimum(f.MinTasks) <= 0 {
		where = s.AllOf(where, p.Tasks.Any(inStatus))
	}
	return s.Criteria{
		Where: where,
		Thresholds: []s.Threshold{
			p.Tasks.Count(inStatus, minimum(f.MinTasks)),
			p.Milestones.Count(nil, minimum(f.MinMilestones)),
			p.Comments.Count(nil, minimum(f.MinComments)),
		},
	}, nil
}

// CompileTaskFilter builds the task search predicate.
func (c *FilterCompiler) CompileTaskFilter(f TaskFilter) (s.Visitable, error) {
	t := domain.Tasks()
	status, hasStatus, err := c.policy.taskStatus(c.logger, f.Status)
	if err != nil {
		return nil, err
	}
	var byStatus s.Visitable
	if hasStatus {
		byStatus = t.Status.Eq(status)
	}
	tagNamed := func(name string) s.Visitable {
		return t.Tags.Any(func(tag domain.TagPath) s.Visitable { return tag.Name.Contains(name) })
	}
	assigneeEmail := func(email string) s.Visitable {
		return t.Assignee.Has(func(u domain.UserPath) s.Visitable { return u.Email.Contains(email) })
	}
	projectName := func(name string) s.Visitable {
		return t.Project.Has(func(p domain.ProjectPath) s.Visitable { return p.Name.Contains(name) })
	}
	return s.AllOf(
		ifText(f.Title, t.Title.Contains),
		ifText(f.Description, t.Description.Contains),
		byStatus,
		ifText(f.TagName, tagNamed),
		ifText(f.AssigneeEmail, assigneeEmail),
		ifText(f.ProjectName, projectName),
		ifTime(f.DueFrom, t.DueDate.AtOrAfter),
		ifTime(f.DueTo, t.DueDate.AtOrBefore),
		ifText(f.SearchText, func(text string) s.Visitable {
			return s.AnyOf(
				t.Title.Contains(text),
				t.Description.Contains(text),
				projectName(text),
				assigneeEmail(text),
				tagNamed(text),
			)
		}),
	), nil
}

// CompileProjectTaskCriteria builds the project-task search with the typed
// accessors.
func (c *FilterCompiler) CompileProjectTaskCriteria(q ProjectTaskCriteria) (s.Visitable, error) {
	p := domain.Projects()
	status, hasStatus, err := c.policy.taskStatus(c.logger, q.Status)
	if err != nil {
		return nil, err
	}
	return s.AllOf(
		ifTime(q.StartFrom, p.StartDate.AtOrAfter),
		ifTime(q.EndTo, p.EndDate.AtOrBefore),
		p.Tasks.Any(func(t domain.TaskPath) s.Visitable {
			if !hasStatus {
				return nil
			}
			return t.Status.Eq(status)
		}),
		p.Tasks.Any(func(t domain.TaskPath) s.Visitable {
			return ifText(q.TitleContains, t.Title.Contains)
		}),
		p.Tasks.Any(func(t domain.TaskPath) s.Visitable {
			return ifText(q.AssigneeEmail, func(email string) s.Visitable {
				return t.Assignee.Has(func(u domain.UserPath) s.Visitable { return u.Email.Contains(email) })
			})
		}),
		p.Tasks.Any(func(t domain.TaskPath) s.Visitable {
			return ifText(q.TagName, func(name string) s.Visitable {
				return t.Tags.Any(func(tag domain.TagPath) s.Visitable { return tag.Name.Contains(name) })
			})
		}),
	), nil
}

// CompileProjectTaskCriteriaGeneric builds the same search as
// CompileProjectTaskCriteria through name-based paths.
func (c *FilterCompiler) CompileProjectTaskCriteriaGeneric(q ProjectTaskCriteria) (s.Visitable, error) {
	g := c.generic
	parts := make([]s.Visitable, 0, 6)
	add := func(predicate s.Visitable, err error) error {
		if err != nil {
			return err
		}
		parts = append(parts, predicate)
		return nil
	}
	if q.StartFrom != nil {
		if err := add(g.startDate.Gte(*q.StartFrom)); err != nil {
			return nil, err
		}
	}
	if q.EndTo != nil {
		if err := add(g.endDate.Lte(*q.EndTo)); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(q.Status) != "" {
		predicate, err := g.taskStatus.Eq(q.Status)
		ok, err := c.policy.resolve(c.logger, "status", q.Status, err)
		if err != nil {
			return nil, errors.Wrap(err, g.taskStatus.String())
		}
		if ok {
			parts = append(parts, predicate)
		}
	}
	for _, text := range []struct {
		path  spec.Path
		value string
	}{
		{g.taskTitle, q.TitleContains},
		{g.assigneeEmail, q.AssigneeEmail},
		{g.tagName, q.TagName},
	} {
		if strings.TrimSpace(text.value) == "" {
			continue
		}
		if err := add(text.path.Contains(text.value)); err != nil {
			return nil, err
		}
	}
	return s.AllOf(parts...), nil
}

// CompileUserFilter builds the user search predicate. Role names compare
// case-insensitively.
func (c *FilterCompiler) CompileUserFilter(f UserFilter) s.Visitable {
	u := domain.Users()
	return s.AllOf(
		ifText(f.RoleName, func(name string) s.Visitable {
			return u.Roles.Any(func(r domain.RolePath) s.Visitable { return r.Name.EqualFold(name) })
		}),
		ifTime(f.CreatedFrom, u.CreatedAt.AtOrAfter),
		ifTime(f.CreatedTo, u.CreatedAt.AtOrBefore),
	)
}
