package domain

import (
	"time"

	"github.com/pkg/errors"

	s "github.com/krew-solutions/projectdesk/projectdesk/specification/domain"
)

// Entities implement specification.Context under the same logical names the
// schema model declares, so a predicate can be evaluated in memory as well
// as compiled to SQL. Relations that were not loaded read as empty.

func unknownMember(entity, name string) error {
	return errors.Wrapf(s.ErrKeyNotFound, "%s has no member \"%s\"", entity, name)
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func optionalInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func contexts[T s.Context](items []T) []s.Context {
	result := make([]s.Context, 0, len(items))
	for _, item := range items {
		result = append(result, item)
	}
	return result
}

// one returns an untyped nil for a missing row, so it reads as NULL.
func one[T s.Context](item T, present bool) any {
	if !present {
		return nil
	}
	return item
}

type Project struct {
	ID          int64
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time

	Budget     *Budget
	Tasks      []*Task
	Comments   []*Comment
	Milestones []*Milestone
	Members    []*ProjectMember
}

func (p *Project) Identity() int64 {
	return p.ID
}

func (p *Project) Get(name string) (any, error) {
	switch name {
	case "id":
		return p.ID, nil
	case "name":
		return p.Name, nil
	case "description":
		return p.Description, nil
	case "startDate":
		return optionalTime(p.StartDate), nil
	case "endDate":
		return optionalTime(p.EndDate), nil
	case "budget":
		return one(p.Budget, p.Budget != nil), nil
	case "tasks":
		return contexts(p.Tasks), nil
	case "comments":
		return contexts(p.Comments), nil
	case "milestones":
		return contexts(p.Milestones), nil
	case "members":
		return contexts(p.Members), nil
	}
	return nil, unknownMember("Project", name)
}

type Task struct {
	ID          int64
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time
	ProjectID   int64
	AssigneeID  *int64

	Project  *Project
	Assignee *User
	Tags     []*Tag
}

func (t *Task) Identity() int64 {
	return t.ID
}

func (t *Task) Get(name string) (any, error) {
	switch name {
	case "id":
		return t.ID, nil
	case "title":
		return t.Title, nil
	case "description":
		return t.Description, nil
	case "status":
		return string(t.Status), nil
	case "dueDate":
		return optionalTime(t.DueDate), nil
	case "projectId":
		return t.ProjectID, nil
	case "assigneeId":
		return optionalInt(t.AssigneeID), nil
	case "project":
		return one(t.Project, t.Project != nil), nil
	case "assignee":
		return one(t.Assignee, t.Assignee != nil), nil
	case "tags":
		return contexts(t.Tags), nil
	}
	return nil, unknownMember("Task", name)
}

type Budget struct {
	ID        int64
	ProjectID int64
	Total     float64
	Spent     *float64
}

func (b *Budget) Identity() int64 {
	return b.ID
}

func (b *Budget) Get(name string) (any, error) {
	switch name {
	case "id":
		return b.ID, nil
	case "projectId":
		return b.ProjectID, nil
	case "total":
		return b.Total, nil
	case "spent":
		return optionalFloat(b.Spent), nil
	}
	return nil, unknownMember("Budget", name)
}

// ProjectMember binds a user to a project under a free-form role such as
// "OWNER".
type ProjectMember struct {
	ID        int64
	ProjectID int64
	UserID    int64
	Role      string

	User *User
}

func (m *ProjectMember) Identity() int64 {
	return m.ID
}

func (m *ProjectMember) Get(name string) (any, error) {
	switch name {
	case "id":
		return m.ID, nil
	case "projectId":
		return m.ProjectID, nil
	case "userId":
		return m.UserID, nil
	case "role":
		return m.Role, nil
	case "user":
		return one(m.User, m.User != nil), nil
	}
	return nil, unknownMember("ProjectMember", name)
}

type User struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time

	Profile     *Profile
	Roles       []*Role
	Tasks       []*Task
	Memberships []*ProjectMember
}

func (u *User) Identity() int64 {
	return u.ID
}

func (u *User) Get(name string) (any, error) {
	switch name {
	case "id":
		return u.ID, nil
	case "email":
		return u.Email, nil
	case "firstName":
		return u.FirstName, nil
	case "lastName":
		return u.LastName, nil
	case "createdAt":
		return u.CreatedAt, nil
	case "profile":
		return one(u.Profile, u.Profile != nil), nil
	case "roles":
		return contexts(u.Roles), nil
	case "tasks":
		return contexts(u.Tasks), nil
	case "memberships":
		return contexts(u.Memberships), nil
	}
	return nil, unknownMember("User", name)
}

type Profile struct {
	ID        int64
	UserID    int64
	Phone     string
	Address   string
	AvatarURL string
}

func (p *Profile) Identity() int64 {
	return p.ID
}

func (p *Profile) Get(name string) (any, error) {
	switch name {
	case "id":
		return p.ID, nil
	case "userId":
		return p.UserID, nil
	case "phone":
		return p.Phone, nil
	case "address":
		return p.Address, nil
	case "avatarUrl":
		return p.AvatarURL, nil
	}
	return nil, unknownMember("Profile", name)
}

type Tag struct {
	ID   int64
	Name string
}

func (t *Tag) Identity() int64 {
	return t.ID
}

func (t *Tag) Get(name string) (any, error) {
	switch name {
	case "id":
		return t.ID, nil
	case "name":
		return t.Name, nil
	}
	return nil, unknownMember("Tag", name)
}

type Role struct {
	ID   int64
	Name string
}

func (r *Role) Identity() int64 {
	return r.ID
}

func (r *Role) Get(name string) (any, error) {
	switch name {
	case "id":
		return r.ID, nil
	case "name":
		return r.Name, nil
	}
	return nil, unknownMember("Role", name)
}

type Milestone struct {
	ID          int64
	ProjectID   int64
	Name        string
	Description string
	TargetDate  *time.Time
}

func (m *Milestone) Identity() int64 {
	return m.ID
}

func (m *Milestone) Get(name string) (any, error) {
	switch name {
	case "id":
		return m.ID, nil
	case "projectId":
		return m.ProjectID, nil
	case "name":
		return m.Name, nil
	case "description":
		return m.Description, nil
	case "targetDate":
		return optionalTime(m.TargetDate), nil
	}
	return nil, unknownMember("Milestone", name)
}

type Comment struct {
	ID        int64
	ProjectID int64
	AuthorID  *int64
	Content   string
	CreatedAt time.Time

	Author *User
}

func (c *Comment) Identity() int64 {
	return c.ID
}

func (c *Comment) Get(name string) (any, error) {
	switch name {
	case "id":
		return c.ID, nil
	case "projectId":
		return c.ProjectID, nil
	case "authorId":
		return optionalInt(c.AuthorID), nil
	case "content":
		return c.Content, nil
	case "createdAt":
		return c.CreatedAt, nil
	case "author":
		return one(c.Author, c.Author != nil), nil
	}
	return nil, unknownMember("Comment", name)
}
