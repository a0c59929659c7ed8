package application

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/projects/infrastructure"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
)

type ProjectService struct {
	repos   *infrastructure.Repositories
	filters *FilterCompiler
	logger  *slog.Logger
}

func NewProjectService(repos *infrastructure.Repositories, filters *FilterCompiler, logger *slog.Logger) *ProjectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectService{repos: repos, filters: filters, logger: logger.With("service", "projects")}
}

func (svc *ProjectService) Get(sess session.DbSession, id int64) (*domain.Project, error) {
	return svc.repos.Projects.Get(sess, id)
}

// Load reads a project together with its budget, its members and the
// tasks, comments and milestones it owns, so the result can be matched in
// memory. The project itself comes from the session identity map when
// cached and is left unmodified.
func (svc *ProjectService) Load(sess session.DbSession, id int64) (*domain.Project, error) {
	cached, err := svc.repos.Projects.Get(sess, id)
	if err != nil {
		return nil, err
	}
	p := *cached
	q := ownedBy(id)
	budgets, err := svc.repos.Budgets.List(sess, q)
	if err != nil {
		return nil, err
	}
	if len(budgets) > 0 {
		p.Budget = budgets[0]
	}
	if p.Tasks, err = svc.repos.Tasks.List(sess, q); err != nil {
		return nil, err
	}
	if p.Comments, err = svc.repos.Comments.List(sess, q); err != nil {
		return nil, err
	}
	if p.Milestones, err = svc.repos.Milestones.List(sess, q); err != nil {
		return nil, err
	}
	members, err := svc.repos.Members.List(sess, q)
	if err != nil {
		return nil, err
	}
	p.Members = make([]*domain.ProjectMember, 0, len(members))
	for _, m := range members {
		member := *m
		if member.User, err = svc.repos.Users.Get(sess, m.UserID); err != nil {
			return nil, errors.Wrapf(err, "member %d", m.ID)
		}
		p.Members = append(p.Members, &member)
	}
	return &p, nil
}

// ownedBy selects the rows of a child entity that belong to one project.
func ownedBy(projectID int64) repository.Query {
	return repository.Query{
		Where: s.Equal(s.Field(s.GlobalScope(), "projectId"), s.Value(projectID)),
		Page:  repository.PageRequest{Sort: []spec.Order{spec.Asc("id")}},
	}
}

// Matching keeps the loaded projects that satisfy f, evaluated in memory
// with the criteria FindProjects runs in SQL. Relations a project was
// loaded without count as empty.
func (svc *ProjectService) Matching(projects []*domain.Project, f ProjectFilter) ([]*domain.Project, error) {
	criteria, err := svc.filters.CompileProjectFilter(f)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Project, 0, len(projects))
	for _, p := range projects {
		ok, err := criteria.Match(p)
		if err != nil {
			return nil, errors.Wrapf(err, "match project %d", p.ID)
		}
		if ok {
			result = append(result, p)
		}
	}
	return result, nil
}

// FindProjects pages through projects matching f.
func (svc *ProjectService) FindProjects(sess session.DbSession, f ProjectFilter, page repository.PageRequest) (repository.Page[*domain.Project], error) {
	criteria, err := svc.filters.CompileProjectFilter(f)
	if err != nil {
		return repository.Page[*domain.Project]{}, err
	}
	svc.logger.Debug("find projects", "criteria", criteria.String())
	result, err := svc.repos.Projects.Find(sess, repository.Query{
		Where: criteria.Where, Thresholds: criteria.Thresholds, Page: page,
	})
	if err != nil {
		return result, err
	}
	svc.logger.Info("find projects", "total", result.Total, "page", result.Number, "size", result.Size)
	return result, nil
}

// FindWithMinTasksByStatus returns projects with at least min tasks in the
// given status whose tags include one named like tagName. Blank status or
// tag name drop that part of the task condition.
func (svc *ProjectService) FindWithMinTasksByStatus(sess session.DbSession, status string, min int64, tagName string) ([]*domain.Project, error) {
	st, hasStatus, err := svc.filters.Policy().taskStatus(svc.logger, status)
	if err != nil {
		return nil, err
	}
	threshold := domain.Projects().Tasks.Count(func(t domain.TaskPath) s.Visitable {
		var byStatus s.Visitable
		if hasStatus {
			byStatus = t.Status.Eq(st)
		}
		return s.AllOf(
			byStatus,
			ifText(tagName, func(name string) s.Visitable {
				return t.Tags.Any(func(tag domain.TagPath) s.Visitable { return tag.Name.Contains(name) })
			}),
		)
	}, min)
	return svc.list(sess, "find with min tasks by status", repository.Query{Thresholds: []s.Threshold{threshold}})
}

// FindWithoutCommentsHavingMemberRole returns projects without comments that
// have a member in role, compared case-insensitively. A blank role only
// requires the absence of comments.
func (svc *ProjectService) FindWithoutCommentsHavingMemberRole(sess session.DbSession, role string) ([]*domain.Project, error) {
	p := domain.Projects()
	where := s.AllOf(
		p.Members.Any(func(m domain.MemberPath) s.Visitable { return ifText(role, m.Role.EqualFold) }),
		p.Comments.None(func(domain.CommentPath) s.Visitable { return nil }),
	)
	return svc.list(sess, "find without comments having member role", repository.Query{Where: where})
}

// FindByMembers pages through projects having a member in role and a member
// whose email contains emailLike. The two may be different members.
func (svc *ProjectService) FindByMembers(sess session.DbSession, page repository.PageRequest, role, emailLike string) (repository.Page[*domain.Project], error) {
	p := domain.Projects()
	where := s.AllOf(
		p.Members.Any(func(m domain.MemberPath) s.Visitable { return ifText(role, m.Role.EqualFold) }),
		p.Members.Any(func(m domain.MemberPath) s.Visitable {
			return ifText(emailLike, func(email string) s.Visitable {
				return m.User.Has(func(u domain.UserPath) s.Visitable { return u.Email.Contains(email) })
			})
		}),
	)
	svc.logger.Debug("find by members", "predicate", s.Format(where))
	return svc.repos.Projects.Find(sess, repository.Query{Where: where, Page: page})
}

// FindActiveInRange returns projects overlapping [from, to]: started no
// later than to and ended no earlier than from. A nil bound is open.
func (svc *ProjectService) FindActiveInRange(sess session.DbSession, from, to *time.Time) ([]*domain.Project, error) {
	p := domain.Projects()
	where := s.AllOf(
		ifTime(to, p.StartDate.AtOrBefore),
		ifTime(from, p.EndDate.AtOrAfter),
	)
	return svc.list(sess, "find active in range", repository.Query{Where: where})
}

// FindByTaskCriteria runs the project-task search built with typed
// accessors.
func (svc *ProjectService) FindByTaskCriteria(sess session.DbSession, q ProjectTaskCriteria) ([]*domain.Project, error) {
	where, err := svc.filters.CompileProjectTaskCriteria(q)
	if err != nil {
		return nil, err
	}
	return svc.list(sess, "find by task criteria", repository.Query{Where: where})
}

// FindByTaskCriteriaGeneric runs the same search as FindByTaskCriteria
// through name-based paths.
func (svc *ProjectService) FindByTaskCriteriaGeneric(sess session.DbSession, q ProjectTaskCriteria) ([]*domain.Project, error) {
	where, err := svc.filters.CompileProjectTaskCriteriaGeneric(q)
	if err != nil {
		return nil, err
	}
	return svc.list(sess, "find by task criteria generic", repository.Query{Where: where})
}

func (svc *ProjectService) list(sess session.DbSession, name string, q repository.Query) ([]*domain.Project, error) {
	svc.logger.Debug(name, "criteria", q.String())
	projects, err := svc.repos.Projects.List(sess, q)
	if err != nil {
		return nil, err
	}
	svc.logger.Info(name, "found", len(projects))
	return projects, nil
}

// CloseProjectsWithCompletedTasks sets the end date of open projects none of
// whose tasks is unfinished. Projects without tasks qualify too.
func (svc *ProjectService) CloseProjectsWithCompletedTasks(sess session.DbSession, end time.Time) (int64, error) {
	p := domain.Projects()
	where := s.AllOf(
		p.EndDate.IsNull(),
		p.Tasks.None(func(t domain.TaskPath) s.Visitable { return t.Status.Ne(domain.Completed) }),
	)
	return svc.update(sess, where, spec.Set("endDate", end))
}

// ReopenProjectsWithPendingTasks clears the end date of closed projects that
// still have an unfinished task.
func (svc *ProjectService) ReopenProjectsWithPendingTasks(sess session.DbSession) (int64, error) {
	p := domain.Projects()
	where := s.AllOf(
		p.EndDate.IsNotNull(),
		p.Tasks.Any(func(t domain.TaskPath) s.Visitable { return t.Status.Ne(domain.Completed) }),
	)
	return svc.update(sess, where, spec.Set("endDate", nil))
}

// InitStartDateIfHasTasks sets a start date on projects that have tasks but
// no start date yet.
func (svc *ProjectService) InitStartDateIfHasTasks(sess session.DbSession, start time.Time) (int64, error) {
	p := domain.Projects()
	where := s.AllOf(p.StartDate.IsNull(), p.Tasks.Exists())
	return svc.update(sess, where, spec.Set("startDate", start))
}

// DeleteProjectsWithoutTasksBetween deletes task-less projects starting at
// or after from and ending at or before to. A nil bound is open.
func (svc *ProjectService) DeleteProjectsWithoutTasksBetween(sess session.DbSession, from, to *time.Time) (int64, error) {
	p := domain.Projects()
	where := s.AllOf(
		ifTime(from, p.StartDate.AtOrAfter),
		ifTime(to, p.EndDate.AtOrBefore),
		p.Tasks.None(func(domain.TaskPath) s.Visitable { return nil }),
	)
	return svc.delete(sess, where)
}

// DeleteProjectsWithInconsistentBudget deletes projects whose budget has
// spent more than its total.
func (svc *ProjectService) DeleteProjectsWithInconsistentBudget(sess session.DbSession) (int64, error) {
	where := domain.Projects().Budget.Has(func(b domain.BudgetPath) s.Visitable {
		return s.AllOf(b.Spent.IsNotNull(), b.Total.IsNotNull(), b.Spent.GtField(b.Total))
	})
	return svc.delete(sess, where)
}

func (svc *ProjectService) update(sess session.DbSession, where s.Visitable, assignments ...spec.Assignment) (int64, error) {
	return atomically(sess, func(tx session.DbSession) (int64, error) {
		return svc.repos.Projects.Update(tx, where, assignments...)
	})
}

func (svc *ProjectService) delete(sess session.DbSession, where s.Visitable) (int64, error) {
	return atomically(sess, func(tx session.DbSession) (int64, error) {
		return svc.repos.Projects.Delete(tx, where)
	})
}
