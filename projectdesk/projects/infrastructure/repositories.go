package infrastructure

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
)

// Repositories groups the stores the project services query and mutate.
type Repositories struct {
	Model      *spec.Model
	Projects   *repository.Store[*domain.Project]
	Tasks      *repository.Store[*domain.Task]
	Users      *repository.Store[*domain.User]
	Budgets    *repository.Store[*domain.Budget]
	Comments   *repository.Store[*domain.Comment]
	Milestones *repository.Store[*domain.Milestone]
	Members    *repository.Store[*domain.ProjectMember]
}

func NewRepositories(model *spec.Model, opts ...repository.Option) (*Repositories, error) {
	var result *multierror.Error
	store := func(err error) {
		result = multierror.Append(result, err)
	}
	r := &Repositories{Model: model}
	var err error
	r.Projects, err = repository.NewStore(model, "Project", MapProject, opts...)
	store(err)
	r.Tasks, err = repository.NewStore(model, "Task", MapTask, opts...)
	store(err)
	r.Users, err = repository.NewStore(model, "User", MapUser, opts...)
	store(err)
	r.Budgets, err = repository.NewStore(model, "Budget", MapBudget, opts...)
	store(err)
	r.Comments, err = repository.NewStore(model, "Comment", MapComment, opts...)
	store(err)
	r.Milestones, err = repository.NewStore(model, "Milestone", MapMilestone, opts...)
	store(err)
	r.Members, err = repository.NewStore(model, "ProjectMember", MapProjectMember, opts...)
	store(err)
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return r, nil
}

// Get loads one row of the entity named case-insensitively by entity.
func (r *Repositories) Get(sess session.DbSession, entity string, id int64) (repository.Entity, error) {
	m, err := r.Model.Lookup(entity)
	if err != nil {
		return nil, err
	}
	switch m.Name() {
	case "Project":
		return get(r.Projects, sess, id)
	case "Task":
		return get(r.Tasks, sess, id)
	case "User":
		return get(r.Users, sess, id)
	case "Budget":
		return get(r.Budgets, sess, id)
	case "Comment":
		return get(r.Comments, sess, id)
	case "Milestone":
		return get(r.Milestones, sess, id)
	case "ProjectMember":
		return get(r.Members, sess, id)
	}
	return nil, errors.Wrapf(spec.ErrUnknownEntity, "no store for \"%s\"", m.Name())
}

// get keeps a missing row from reaching the caller as a typed nil.
func get[T repository.Entity](store *repository.Store[T], sess session.DbSession, id int64) (repository.Entity, error) {
	item, err := store.Get(sess, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}
