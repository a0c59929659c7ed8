package testutils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"syreclabs.com/go/faker"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

func Ptr[T any](v T) *T {
	return &v
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type ProjectRow struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

type TaskRow struct {
	ProjectID   int64
	Title       string
	Description string
	Status      domain.TaskStatus
	DueDate     *time.Time
	AssigneeID  *int64
}

// Fixtures inserts rows with plain SQL. Blank names are filled in with fake
// values.
type Fixtures struct {
	tb   testing.TB
	conn session.DbConnection
	seq  int
}

func NewFixtures(tb testing.TB, sess session.DbSession) *Fixtures {
	return &Fixtures{tb: tb, conn: sess.Connection()}
}

func (f *Fixtures) insert(query string, args ...any) int64 {
	f.tb.Helper()
	var id int64
	require.NoError(f.tb, f.conn.QueryRow(query+" RETURNING id", args...).Scan(&id))
	return id
}

func (f *Fixtures) exec(query string, args ...any) {
	f.tb.Helper()
	_, err := f.conn.Exec(query, args...)
	require.NoError(f.tb, err)
}

func (f *Fixtures) unique(value string) string {
	f.seq++
	return fmt.Sprintf("%d.%s", f.seq, value)
}

// nullable passes a missing value as NULL instead of a typed nil pointer.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func (f *Fixtures) User(email string) int64 {
	return f.UserCreatedAt(email, time.Now().UTC().Truncate(time.Second))
}

func (f *Fixtures) UserCreatedAt(email string, createdAt time.Time) int64 {
	f.tb.Helper()
	userID := f.insert(
		"INSERT INTO users (email, first_name, last_name, created_at) VALUES (?, ?, ?, ?)",
		or(email, f.unique(faker.Internet().Email())), faker.Name().FirstName(), faker.Name().LastName(), createdAt,
	)
	f.insert(
		"INSERT INTO profiles (phone, address, avatar_url, user_id) VALUES (?, ?, ?, ?)",
		faker.PhoneNumber().CellPhone(), faker.Address().StreetAddress(), faker.Internet().Url(), userID,
	)
	return userID
}

func (f *Fixtures) Role(name string) int64 {
	f.tb.Helper()
	return f.insert("INSERT INTO roles (name) VALUES (?)", or(name, f.unique(faker.Lorem().Word())))
}

func (f *Fixtures) GrantRole(userID, roleID int64) {
	f.tb.Helper()
	f.exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, roleID)
}

func (f *Fixtures) Project(row ProjectRow) int64 {
	f.tb.Helper()
	return f.insert(
		"INSERT INTO projects (name, description, start_date, end_date) VALUES (?, ?, ?, ?)",
		or(row.Name, faker.Company().Name()), or(row.Description, faker.Lorem().Sentence(6)), nullable(row.StartDate), nullable(row.EndDate),
	)
}

func (f *Fixtures) Budget(projectID int64, total float64, spent *float64) int64 {
	f.tb.Helper()
	return f.insert("INSERT INTO budgets (total, spent, project_id) VALUES (?, ?, ?)", total, nullable(spent), projectID)
}

func (f *Fixtures) Member(projectID, userID int64, role string) int64 {
	f.tb.Helper()
	return f.insert(
		"INSERT INTO project_members (role, project_id, user_id) VALUES (?, ?, ?)",
		or(role, faker.Lorem().Word()), projectID, userID,
	)
}

func (f *Fixtures) Task(row TaskRow) int64 {
	f.tb.Helper()
	status := row.Status
	if status == "" {
		status = domain.Pending
	}
	return f.insert(
		"INSERT INTO tasks (title, description, status, due_date, project_id, assignee_id) VALUES (?, ?, ?, ?, ?, ?)",
		or(row.Title, faker.Lorem().Sentence(3)), or(row.Description, faker.Lorem().Sentence(8)), string(status), nullable(row.DueDate), row.ProjectID, nullable(row.AssigneeID),
	)
}

func (f *Fixtures) Tag(name string) int64 {
	f.tb.Helper()
	return f.insert("INSERT INTO tags (name) VALUES (?)", or(name, f.unique(faker.Lorem().Word())))
}

func (f *Fixtures) TagTask(taskID, tagID int64) {
	f.tb.Helper()
	f.exec("INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)", taskID, tagID)
}

func (f *Fixtures) Milestone(projectID int64, name string) int64 {
	f.tb.Helper()
	return f.insert(
		"INSERT INTO milestones (name, description, project_id) VALUES (?, ?, ?)",
		or(name, faker.Lorem().Sentence(2)), faker.Lorem().Sentence(5), projectID,
	)
}

func (f *Fixtures) Comment(projectID int64, content string) int64 {
	f.tb.Helper()
	return f.insert(
		"INSERT INTO comments (content, created_at, project_id) VALUES (?, ?, ?)",
		or(content, faker.Lorem().Sentence(10)), time.Now().UTC().Truncate(time.Second), projectID,
	)
}
