package main

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
)

type projectView struct {
	ID          int64      `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	StartDate   *time.Time `yaml:"start_date,omitempty"`
	EndDate     *time.Time `yaml:"end_date,omitempty"`
}

type taskView struct {
	ID         int64      `yaml:"id"`
	ProjectID  int64      `yaml:"project_id"`
	Title      string     `yaml:"title"`
	Status     string     `yaml:"status"`
	DueDate    *time.Time `yaml:"due_date,omitempty"`
	AssigneeID *int64     `yaml:"assignee_id,omitempty"`
}

type userView struct {
	ID        int64     `yaml:"id"`
	Email     string    `yaml:"email"`
	FirstName string    `yaml:"first_name,omitempty"`
	LastName  string    `yaml:"last_name,omitempty"`
	CreatedAt time.Time `yaml:"created_at"`
}

type budgetView struct {
	ID        int64    `yaml:"id"`
	ProjectID int64    `yaml:"project_id"`
	Total     float64  `yaml:"total"`
	Spent     *float64 `yaml:"spent,omitempty"`
}

type commentView struct {
	ID        int64     `yaml:"id"`
	ProjectID int64     `yaml:"project_id"`
	AuthorID  *int64    `yaml:"author_id,omitempty"`
	Content   string    `yaml:"content"`
	CreatedAt time.Time `yaml:"created_at"`
}

type milestoneView struct {
	ID          int64      `yaml:"id"`
	ProjectID   int64      `yaml:"project_id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	TargetDate  *time.Time `yaml:"target_date,omitempty"`
}

type memberView struct {
	ID        int64  `yaml:"id"`
	ProjectID int64  `yaml:"project_id"`
	UserID    int64  `yaml:"user_id"`
	Role      string `yaml:"role"`
	Email     string `yaml:"email,omitempty"`
}

// projectDetailView is a project with its loaded relations.
type projectDetailView struct {
	projectView `yaml:",inline"`
	Budget      *budgetView     `yaml:"budget,omitempty"`
	Members     []memberView    `yaml:"members"`
	Tasks       []taskView      `yaml:"tasks"`
	Milestones  []milestoneView `yaml:"milestones"`
	Comments    []commentView   `yaml:"comments"`
}

type pageView[T any] struct {
	Items []T   `yaml:"items"`
	Total int64 `yaml:"total"`
	Page  int   `yaml:"page"`
	Size  int   `yaml:"size"`
	Pages int   `yaml:"pages"`
}

func projectViews(projects []*domain.Project) []projectView {
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, projectView{
			ID: p.ID, Name: p.Name, Description: p.Description, StartDate: p.StartDate, EndDate: p.EndDate,
		})
	}
	return views
}

func taskViews(tasks []*domain.Task) []taskView {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskView{
			ID: t.ID, ProjectID: t.ProjectID, Title: t.Title, Status: string(t.Status), DueDate: t.DueDate, AssigneeID: t.AssigneeID,
		})
	}
	return views
}

func userViews(users []*domain.User) []userView {
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{
			ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, CreatedAt: u.CreatedAt,
		})
	}
	return views
}

func budgetOf(b *domain.Budget) budgetView {
	return budgetView{ID: b.ID, ProjectID: b.ProjectID, Total: b.Total, Spent: b.Spent}
}

func commentOf(c *domain.Comment) commentView {
	return commentView{ID: c.ID, ProjectID: c.ProjectID, AuthorID: c.AuthorID, Content: c.Content, CreatedAt: c.CreatedAt}
}

func milestoneOf(m *domain.Milestone) milestoneView {
	return milestoneView{ID: m.ID, ProjectID: m.ProjectID, Name: m.Name, Description: m.Description, TargetDate: m.TargetDate}
}

func memberOf(m *domain.ProjectMember) memberView {
	view := memberView{ID: m.ID, ProjectID: m.ProjectID, UserID: m.UserID, Role: m.Role}
	if m.User != nil {
		view.Email = m.User.Email
	}
	return view
}

func projectDetail(p *domain.Project) projectDetailView {
	view := projectDetailView{
		projectView: projectViews([]*domain.Project{p})[0],
		Members:     make([]memberView, 0, len(p.Members)),
		Tasks:       taskViews(p.Tasks),
		Milestones:  make([]milestoneView, 0, len(p.Milestones)),
		Comments:    make([]commentView, 0, len(p.Comments)),
	}
	if p.Budget != nil {
		b := budgetOf(p.Budget)
		view.Budget = &b
	}
	for _, m := range p.Members {
		view.Members = append(view.Members, memberOf(m))
	}
	for _, m := range p.Milestones {
		view.Milestones = append(view.Milestones, milestoneOf(m))
	}
	for _, c := range p.Comments {
		view.Comments = append(view.Comments, commentOf(c))
	}
	return view
}

// entityView picks the view of a row loaded by entity name.
func entityView(e repository.Entity) (any, error) {
	switch v := e.(type) {
	case *domain.Project:
		return projectViews([]*domain.Project{v})[0], nil
	case *domain.Task:
		return taskViews([]*domain.Task{v})[0], nil
	case *domain.User:
		return userViews([]*domain.User{v})[0], nil
	case *domain.Budget:
		return budgetOf(v), nil
	case *domain.Comment:
		return commentOf(v), nil
	case *domain.Milestone:
		return milestoneOf(v), nil
	case *domain.ProjectMember:
		return memberOf(v), nil
	}
	return nil, errors.Errorf("no view for %T", e)
}

func printYAML(w io.Writer, value any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return err
	}
	return enc.Close()
}

type affectedView struct {
	Operation string `yaml:"operation"`
	Affected  int64  `yaml:"affected"`
}
