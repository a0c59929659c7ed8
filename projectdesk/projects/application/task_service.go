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

type TaskService struct {
	repos   *infrastructure.Repositories
	filters *FilterCompiler
	logger  *slog.Logger
}

func NewTaskService(repos *infrastructure.Repositories, filters *FilterCompiler, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{repos: repos, filters: filters, logger: logger.With("service", "tasks")}
}

func (svc *TaskService) Get(sess session.DbSession, id int64) (*domain.Task, error) {
	return svc.repos.Tasks.Get(sess, id)
}

func (svc *TaskService) FindTasks(sess session.DbSession, f TaskFilter, page repository.PageRequest) (repository.Page[*domain.Task], error) {
	where, err := svc.filters.CompileTaskFilter(f)
	if err != nil {
		return repository.Page[*domain.Task]{}, err
	}
	svc.logger.Debug("find tasks", "predicate", s.Format(where))
	result, err := svc.repos.Tasks.Find(sess, repository.Query{Where: where, Page: page})
	if err != nil {
		return result, err
	}
	svc.logger.Info("find tasks", "total", result.Total, "page", result.Number, "size", result.Size)
	return result, nil
}

// Search lists tasks by exact status, tag, assignee and project. Nil ids
// and a blank status are unset.
func (svc *TaskService) Search(sess session.DbSession, status string, tagID, assigneeID, projectID *int64) ([]*domain.Task, error) {
	where, err := svc.taskWhere(status, projectID, nil)
	if err != nil {
		return nil, err
	}
	t := domain.Tasks()
	where = s.AllOf(
		where,
		ifInteger(tagID, func(id int64) s.Visitable {
			return t.Tags.Any(func(tag domain.TagPath) s.Visitable { return tag.ID.Eq(id) })
		}),
		ifInteger(assigneeID, t.AssigneeID.Eq),
	)
	svc.logger.Debug("search tasks", "predicate", s.Format(where))
	tasks, err := svc.repos.Tasks.List(sess, repository.Query{Where: where})
	if err != nil {
		return nil, err
	}
	svc.logger.Info("search tasks", "found", len(tasks))
	return tasks, nil
}

// taskWhere combines the optional status, project and due date conditions
// shared by the task operations.
func (svc *TaskService) taskWhere(status string, projectID *int64, dueBefore *time.Time) (s.Visitable, error) {
	t := domain.Tasks()
	st, hasStatus, err := svc.filters.Policy().taskStatus(svc.logger, status)
	if err != nil {
		return nil, err
	}
	var byStatus s.Visitable
	if hasStatus {
		byStatus = t.Status.Eq(st)
	}
	return s.AllOf(
		byStatus,
		ifInteger(projectID, t.ProjectID.Eq),
		ifTime(dueBefore, t.DueDate.Before),
	), nil
}

// UpdateStatusByProjectAndDue moves tasks in status from to status to. A
// blank destination means Pending; an invalid one is Pending too unless the
// enum policy rejects it.
func (svc *TaskService) UpdateStatusByProjectAndDue(sess session.DbSession, from, to string, projectID *int64, dueBefore *time.Time) (int64, error) {
	where, err := svc.taskWhere(from, projectID, dueBefore)
	if err != nil {
		return 0, err
	}
	target, ok, err := svc.filters.Policy().taskStatus(svc.logger, to)
	if err != nil {
		return 0, err
	}
	if !ok {
		target = domain.Pending
	}
	return atomically(sess, func(tx session.DbSession) (int64, error) {
		return svc.repos.Tasks.Update(tx, where, spec.Set("status", string(target)))
	})
}

func (svc *TaskService) DeleteByStatusAndDueBefore(sess session.DbSession, status string, dueBefore *time.Time) (int64, error) {
	where, err := svc.taskWhere(status, nil, dueBefore)
	if err != nil {
		return 0, err
	}
	return atomically(sess, func(tx session.DbSession) (int64, error) {
		return svc.repos.Tasks.Delete(tx, where)
	})
}

// ReassignTasks hands the tasks of one user over to another, optionally
// limited to a project and a status. Both user ids are required.
func (svc *TaskService) ReassignTasks(sess session.DbSession, fromUserID, toUserID, projectID *int64, status string) (int64, error) {
	if fromUserID == nil || toUserID == nil {
		return 0, errors.Wrap(ErrMissingArgument, "reassign requires both user ids")
	}
	where, err := svc.taskWhere(status, projectID, nil)
	if err != nil {
		return 0, err
	}
	where = s.AllOf(domain.Tasks().AssigneeID.Eq(*fromUserID), where)
	return atomically(sess, func(tx session.DbSession) (int64, error) {
		return svc.repos.Tasks.Update(tx, where, spec.Set("assigneeId", *toUserID))
	})
}
