package application

import (
	"log/slog"
	"time"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/projects/infrastructure"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
)

type UserService struct {
	repos   *infrastructure.Repositories
	filters *FilterCompiler
	logger  *slog.Logger
}

func NewUserService(repos *infrastructure.Repositories, filters *FilterCompiler, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repos: repos, filters: filters, logger: logger.With("service", "users")}
}

func (svc *UserService) Get(sess session.DbSession, id int64) (*domain.User, error) {
	return svc.repos.Users.Get(sess, id)
}

// SearchByRoleAndCreatedBetween lists users holding role, compared
// case-insensitively, created within [from, to].
func (svc *UserService) SearchByRoleAndCreatedBetween(sess session.DbSession, role string, from, to *time.Time) ([]*domain.User, error) {
	where := svc.filters.CompileUserFilter(UserFilter{RoleName: role, CreatedFrom: from, CreatedTo: to})
	return svc.list(sess, "search by role and created between", repository.Query{Where: where})
}

// FindByRoleWithMinTasksInProject lists users holding role that are assigned
// at least min tasks of the project. A nil project counts tasks of every
// project; min <= 0 drops the task condition.
func (svc *UserService) FindByRoleWithMinTasksInProject(sess session.DbSession, role string, projectID *int64, min int64) ([]*domain.User, error) {
	u := domain.Users()
	where := svc.filters.CompileUserFilter(UserFilter{RoleName: role})
	threshold := u.Tasks.Count(func(t domain.TaskPath) s.Visitable {
		return ifInteger(projectID, t.ProjectID.Eq)
	}, min)
	return svc.list(sess, "find by role with min tasks in project", repository.Query{
		Where:      where,
		Thresholds: []s.Threshold{threshold},
	})
}

func (svc *UserService) list(sess session.DbSession, name string, q repository.Query) ([]*domain.User, error) {
	svc.logger.Debug(name, "criteria", q.String())
	users, err := svc.repos.Users.List(sess, q)
	if err != nil {
		return nil, err
	}
	svc.logger.Info(name, "found", len(users))
	return users, nil
}
