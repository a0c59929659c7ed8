package domain

import (
	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/specification/domain/typed"
)

// Typed accessors over the project schema. Projects(), Tasks() and Users()
// start at the query root; relation accessors hand the nested path to the
// callback scoped to the related row.

func Projects() ProjectPath {
	return NewProjectPath(s.GlobalScope())
}

func Tasks() TaskPath {
	return NewTaskPath(s.GlobalScope())
}

func Users() UserPath {
	return NewUserPath(s.GlobalScope())
}

type ProjectPath struct {
	ID          typed.Integer
	Name        typed.Text
	Description typed.Text
	StartDate   typed.Timestamp
	EndDate     typed.Timestamp

	Budget     typed.One[BudgetPath]
	Tasks      typed.Many[TaskPath]
	Comments   typed.Many[CommentPath]
	Milestones typed.Many[MilestonePath]
	Members    typed.Many[MemberPath]
}

func NewProjectPath(scope typed.Scope) ProjectPath {
	return ProjectPath{
		ID:          typed.NewInteger(scope, "id"),
		Name:        typed.NewText(scope, "name"),
		Description: typed.NewText(scope, "description"),
		StartDate:   typed.NewTimestamp(scope, "startDate"),
		EndDate:     typed.NewTimestamp(scope, "endDate"),
		Budget:      typed.NewOne(scope, "budget", NewBudgetPath),
		Tasks:       typed.NewMany(scope, "tasks", NewTaskPath),
		Comments:    typed.NewMany(scope, "comments", NewCommentPath),
		Milestones:  typed.NewMany(scope, "milestones", NewMilestonePath),
		Members:     typed.NewMany(scope, "members", NewMemberPath),
	}
}

type TaskPath struct {
	ID          typed.Integer
	Title       typed.Text
	Description typed.Text
	Status      typed.Enum[TaskStatus]
	DueDate     typed.Timestamp
	ProjectID   typed.Integer
	AssigneeID  typed.Integer

	Project  typed.One[ProjectPath]
	Assignee typed.One[UserPath]
	Tags     typed.Many[TagPath]
}

func NewTaskPath(scope typed.Scope) TaskPath {
	return TaskPath{
		ID:          typed.NewInteger(scope, "id"),
		Title:       typed.NewText(scope, "title"),
		Description: typed.NewText(scope, "description"),
		Status:      typed.NewEnum[TaskStatus](scope, "status"),
		DueDate:     typed.NewTimestamp(scope, "dueDate"),
		ProjectID:   typed.NewInteger(scope, "projectId"),
		AssigneeID:  typed.NewInteger(scope, "assigneeId"),
		Project:     typed.NewOne(scope, "project", NewProjectPath),
		Assignee:    typed.NewOne(scope, "assignee", NewUserPath),
		Tags:        typed.NewMany(scope, "tags", NewTagPath),
	}
}

type BudgetPath struct {
	Total typed.Number
	Spent typed.Number
}

func NewBudgetPath(scope typed.Scope) BudgetPath {
	return BudgetPath{
		Total: typed.NewNumber(scope, "total"),
		Spent: typed.NewNumber(scope, "spent"),
	}
}

type MemberPath struct {
	Role typed.Text
	User typed.One[UserPath]
}

func NewMemberPath(scope typed.Scope) MemberPath {
	return MemberPath{
		Role: typed.NewText(scope, "role"),
		User: typed.NewOne(scope, "user", NewUserPath),
	}
}

type UserPath struct {
	ID        typed.Integer
	Email     typed.Text
	FirstName typed.Text
	LastName  typed.Text
	CreatedAt typed.Timestamp

	Roles       typed.Many[RolePath]
	Tasks       typed.Many[TaskPath]
	Memberships typed.Many[MemberPath]
}

func NewUserPath(scope typed.Scope) UserPath {
	return UserPath{
		ID:          typed.NewInteger(scope, "id"),
		Email:       typed.NewText(scope, "email"),
		FirstName:   typed.NewText(scope, "firstName"),
		LastName:    typed.NewText(scope, "lastName"),
		CreatedAt:   typed.NewTimestamp(scope, "createdAt"),
		Roles:       typed.NewMany(scope, "roles", NewRolePath),
		Tasks:       typed.NewMany(scope, "tasks", NewTaskPath),
		Memberships: typed.NewMany(scope, "memberships", NewMemberPath),
	}
}

type TagPath struct {
	ID   typed.Integer
	Name typed.Text
}

func NewTagPath(scope typed.Scope) TagPath {
	return TagPath{ID: typed.NewInteger(scope, "id"), Name: typed.NewText(scope, "name")}
}

type RolePath struct {
	ID   typed.Integer
	Name typed.Text
}

func NewRolePath(scope typed.Scope) RolePath {
	return RolePath{ID: typed.NewInteger(scope, "id"), Name: typed.NewText(scope, "name")}
}

type MilestonePath struct {
	Name       typed.Text
	TargetDate typed.Timestamp
}

func NewMilestonePath(scope typed.Scope) MilestonePath {
	return MilestonePath{
		Name:       typed.NewText(scope, "name"),
		TargetDate: typed.NewTimestamp(scope, "targetDate"),
	}
}

type CommentPath struct {
	Content   typed.Text
	CreatedAt typed.Timestamp
}

func NewCommentPath(scope typed.Scope) CommentPath {
	return CommentPath{
		Content:   typed.NewText(scope, "content"),
		CreatedAt: typed.NewTimestamp(scope, "createdAt"),
	}
}
