package infrastructure

import (
	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
)

func MapProject(row repository.Scanner) (*domain.Project, error) {
	var p domain.Project
	var start, end repository.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &start, &end); err != nil {
		return nil, err
	}
	p.StartDate, p.EndDate = start.Ptr(), end.Ptr()
	return &p, nil
}

func MapTask(row repository.Scanner) (*domain.Task, error) {
	var t domain.Task
	var status string
	var due repository.NullTime
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &due, &t.ProjectID, &t.AssigneeID); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	t.DueDate = due.Ptr()
	return &t, nil
}

func MapBudget(row repository.Scanner) (*domain.Budget, error) {
	var b domain.Budget
	if err := row.Scan(&b.ID, &b.Total, &b.Spent, &b.ProjectID); err != nil {
		return nil, err
	}
	return &b, nil
}

func MapProjectMember(row repository.Scanner) (*domain.ProjectMember, error) {
	var m domain.ProjectMember
	if err := row.Scan(&m.ID, &m.Role, &m.ProjectID, &m.UserID); err != nil {
		return nil, err
	}
	return &m, nil
}

func MapUser(row repository.Scanner) (*domain.User, error) {
	var u domain.User
	var created repository.NullTime
	if err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = created.Time
	return &u, nil
}

func MapComment(row repository.Scanner) (*domain.Comment, error) {
	var c domain.Comment
	var created repository.NullTime
	if err := row.Scan(&c.ID, &c.Content, &created, &c.ProjectID, &c.AuthorID); err != nil {
		return nil, err
	}
	c.CreatedAt = created.Time
	return &c, nil
}

func MapMilestone(row repository.Scanner) (*domain.Milestone, error) {
	var m domain.Milestone
	var target repository.NullTime
	if err := row.Scan(&m.ID, &m.Name, &m.Description, &target, &m.ProjectID); err != nil {
		return nil, err
	}
	m.TargetDate = target.Ptr()
	return &m, nil
}
