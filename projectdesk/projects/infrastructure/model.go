package infrastructure

import (
	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	spec "github.com/krew-solutions/projectdesk/projectdesk/specification/infrastructure"
)

// NewModel declares the project schema graph. Field order is the column
// order row mappers scan in.
func NewModel() (*spec.Model, error) {
	b := spec.NewModelBuilder()
	b.Entity("Project", "projects").
		Field("id", "id", spec.KindInteger).
		Field("name", "name", spec.KindString).
		Field("description", "description", spec.KindString).
		Field("startDate", "start_date", spec.KindTimestamp).
		Field("endDate", "end_date", spec.KindTimestamp).
		HasOne("budget", "Budget", "project_id").
		HasMany("tasks", "Task", "project_id").
		HasMany("comments", "Comment", "project_id").
		HasMany("milestones", "Milestone", "project_id").
		HasMany("members", "ProjectMember", "project_id")

	b.Entity("Task", "tasks").
		Field("id", "id", spec.KindInteger).
		Field("title", "title", spec.KindString).
		Field("description", "description", spec.KindString).
		Enum("status", "status", domain.TaskStatuses()...).
		Field("dueDate", "due_date", spec.KindTimestamp).
		Field("projectId", "project_id", spec.KindInteger).
		Field("assigneeId", "assignee_id", spec.KindInteger).
		BelongsTo("project", "Project", "project_id").
		BelongsTo("assignee", "User", "assignee_id").
		ManyToMany("tags", "Tag", spec.JoinTable{Table: "task_tags", ParentColumn: "task_id", ChildColumn: "tag_id"})

	b.Entity("Budget", "budgets").
		Field("id", "id", spec.KindInteger).
		Field("total", "total", spec.KindNumber).
		Field("spent", "spent", spec.KindNumber).
		Field("projectId", "project_id", spec.KindInteger).
		BelongsTo("project", "Project", "project_id")

	b.Entity("ProjectMember", "project_members").
		Field("id", "id", spec.KindInteger).
		Field("role", "role", spec.KindString).
		Field("projectId", "project_id", spec.KindInteger).
		Field("userId", "user_id", spec.KindInteger).
		BelongsTo("project", "Project", "project_id").
		BelongsTo("user", "User", "user_id")

	b.Entity("User", "users").
		Field("id", "id", spec.KindInteger).
		Field("email", "email", spec.KindString).
		Field("firstName", "first_name", spec.KindString).
		Field("lastName", "last_name", spec.KindString).
		Field("createdAt", "created_at", spec.KindTimestamp).
		HasOne("profile", "Profile", "user_id").
		HasMany("tasks", "Task", "assignee_id").
		HasMany("memberships", "ProjectMember", "user_id").
		ManyToMany("roles", "Role", spec.JoinTable{Table: "user_roles", ParentColumn: "user_id", ChildColumn: "role_id"})

	b.Entity("Profile", "profiles").
		Field("id", "id", spec.KindInteger).
		Field("phone", "phone", spec.KindString).
		Field("address", "address", spec.KindString).
		Field("avatarUrl", "avatar_url", spec.KindString).
		Field("userId", "user_id", spec.KindInteger).
		BelongsTo("user", "User", "user_id")

	b.Entity("Tag", "tags").
		Field("id", "id", spec.KindInteger).
		Field("name", "name", spec.KindString).
		ManyToMany("tasks", "Task", spec.JoinTable{Table: "task_tags", ParentColumn: "tag_id", ChildColumn: "task_id"})

	b.Entity("Role", "roles").
		Field("id", "id", spec.KindInteger).
		Field("name", "name", spec.KindString).
		ManyToMany("users", "User", spec.JoinTable{Table: "user_roles", ParentColumn: "role_id", ChildColumn: "user_id"})

	b.Entity("Milestone", "milestones").
		Field("id", "id", spec.KindInteger).
		Field("name", "name", spec.KindString).
		Field("description", "description", spec.KindString).
		Field("targetDate", "target_date", spec.KindTimestamp).
		Field("projectId", "project_id", spec.KindInteger).
		BelongsTo("project", "Project", "project_id")

	b.Entity("Comment", "comments").
		Field("id", "id", spec.KindInteger).
		Field("content", "content", spec.KindString).
		Field("createdAt", "created_at", spec.KindTimestamp).
		Field("projectId", "project_id", spec.KindInteger).
		Field("authorId", "author_id", spec.KindInteger).
		BelongsTo("project", "Project", "project_id").
		BelongsTo("author", "User", "author_id")

	return b.Build()
}

// MustModel is NewModel for program start-up.
func MustModel() *spec.Model {
	m, err := NewModel()
	if err != nil {
		panic(err)
	}
	return m
}
