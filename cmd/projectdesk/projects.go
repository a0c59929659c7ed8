package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/application"
	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

func newProjectsCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "projects", Short: "Search and bulk-edit projects"}
	cmd.AddCommand(
		newProjectGetCommand(flags),
		newProjectShowCommand(flags),
		newProjectSearchCommand(flags),
		newProjectsWithMinTasksCommand(flags),
		newProjectsWithoutCommentsCommand(flags),
		newProjectsByMembersCommand(flags),
		newActiveProjectsCommand(flags),
		newProjectsByTasksCommand(flags),
		newCloseProjectsCommand(flags),
		newReopenProjectsCommand(flags),
		newInitStartCommand(flags),
		newDeleteProjectsWithoutTasksCommand(flags),
		newDeleteInconsistentBudgetsCommand(flags),
	)
	return cmd
}

func printProjects(cmd *cobra.Command, projects []*domain.Project) error {
	return printYAML(cmd.OutOrStdout(), projectViews(projects))
}

func printProjectPage(cmd *cobra.Command, page repository.Page[*domain.Project]) error {
	return printYAML(cmd.OutOrStdout(), pageView[projectView]{
		Items: projectViews(page.Items),
		Total: page.Total,
		Page:  page.Number,
		Size:  page.Size,
		Pages: page.TotalPages(),
	})
}

func newProjectGetCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: inSession(flags, func(cmd *cobra.Command, args []string, a *app, sess session.DbSession) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.projects.Get(sess, id)
			if err != nil {
				return err
			}
			return printProjects(cmd, []*domain.Project{p})
		}),
	}
}

func newProjectShowCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one project with its budget, members, tasks, milestones and comments",
		Args:  cobra.ExactArgs(1),
		RunE: inSession(flags, func(cmd *cobra.Command, args []string, a *app, sess session.DbSession) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.projects.Load(sess, id)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), projectDetail(p))
		}),
	}
}

func newProjectSearchCommand(flags *globalFlags) *cobra.Command {
	var (
		f                                  application.ProjectFilter
		startFrom, startTo, endFrom, endTo string
		page                               pageFlags
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search projects by their fields, budget, members and related counts",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
		filter := f
		err := parseTimes(
			timeArg{startFrom, &filter.StartFrom},
			timeArg{startTo, &filter.StartTo},
			timeArg{endFrom, &filter.EndFrom},
			timeArg{endTo, &filter.EndTo},
		)
		if err != nil {
			return err
		}
		for name, target := range map[string]**float64{
			"budget-min": &filter.BudgetMin,
			"budget-max": &filter.BudgetMax,
			"spent-max":  &filter.SpentMax,
		} {
			if *target, err = float64Flag(cmd, name); err != nil {
				return err
			}
		}
		for name, target := range map[string]**int64{
			"min-tasks":      &filter.MinTasks,
			"min-milestones": &filter.MinMilestones,
			"min-comments":   &filter.MinComments,
		} {
			if *target, err = int64Flag(cmd, name); err != nil {
				return err
			}
		}
		result, err := a.projects.FindProjects(sess, filter, page.request())
		if err != nil {
			return err
		}
		return printProjectPage(cmd, result)
	})
	fs := cmd.Flags()
	fs.StringVar(&f.Name, "name", "", "name contains")
	fs.StringVar(&f.Description, "description", "", "description contains")
	fs.StringVar(&f.MemberEmail, "member-email", "", "some member's email contains")
	fs.StringVar(&f.SearchText, "search", "", "text in name, description, task titles, milestone names or comments")
	fs.StringVar(&f.TaskStatus, "task-status", "", "task status counted by --min-tasks, or required on some task")
	fs.StringVar(&startFrom, "start-from", "", "earliest start date")
	fs.StringVar(&startTo, "start-to", "", "latest start date")
	fs.StringVar(&endFrom, "end-from", "", "earliest end date")
	fs.StringVar(&endTo, "end-to", "", "latest end date")
	fs.Float64("budget-min", 0, "minimum budget total")
	fs.Float64("budget-max", 0, "maximum budget total")
	fs.Float64("spent-max", 0, "maximum budget spent")
	fs.Int64("min-tasks", 0, "minimum number of tasks")
	fs.Int64("min-milestones", 0, "minimum number of milestones")
	fs.Int64("min-comments", 0, "minimum number of comments")
	page.register(cmd)
	return cmd
}

func newProjectsWithMinTasksCommand(flags *globalFlags) *cobra.Command {
	var (
		status, tag string
		min         int64
	)
	cmd := &cobra.Command{
		Use:   "with-min-tasks",
		Short: "Projects with at least --min tasks in a status and tagged like --tag",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			projects, err := a.projects.FindWithMinTasksByStatus(sess, status, min, tag)
			if err != nil {
				return err
			}
			return printProjects(cmd, projects)
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "task status")
	cmd.Flags().StringVar(&tag, "tag", "", "tag name contains")
	cmd.Flags().Int64Var(&min, "min", 1, "minimum number of matching tasks")
	return cmd
}

func newProjectsWithoutCommentsCommand(flags *globalFlags) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "without-comments",
		Short: "Projects without comments that have a member in --role",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			projects, err := a.projects.FindWithoutCommentsHavingMemberRole(sess, role)
			if err != nil {
				return err
			}
			return printProjects(cmd, projects)
		}),
	}
	cmd.Flags().StringVar(&role, "role", "", "member role, case-insensitive")
	return cmd
}

func newProjectsByMembersCommand(flags *globalFlags) *cobra.Command {
	var (
		role, email string
		page        pageFlags
	)
	cmd := &cobra.Command{
		Use:   "by-members",
		Short: "Projects with a member in --role and a member whose email contains --email",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			result, err := a.projects.FindByMembers(sess, page.request(), role, email)
			if err != nil {
				return err
			}
			return printProjectPage(cmd, result)
		}),
	}
	cmd.Flags().StringVar(&role, "role", "", "member role, case-insensitive")
	cmd.Flags().StringVar(&email, "email", "", "member email contains")
	page.register(cmd)
	return cmd
}

func newActiveProjectsCommand(flags *globalFlags) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "active",
		Short: "Projects running during [--from, --to]",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			var fromTime, toTime *time.Time
			if err := parseTimes(timeArg{from, &fromTime}, timeArg{to, &toTime}); err != nil {
				return err
			}
			projects, err := a.projects.FindActiveInRange(sess, fromTime, toTime)
			if err != nil {
				return err
			}
			return printProjects(cmd, projects)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "range start")
	cmd.Flags().StringVar(&to, "to", "", "range end")
	return cmd
}

func newProjectsByTasksCommand(flags *globalFlags) *cobra.Command {
	var (
		q                application.ProjectTaskCriteria
		startFrom, endTo string
		generic          bool
	)
	cmd := &cobra.Command{
		Use:   "by-tasks",
		Short: "Projects by properties of their tasks",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			criteria := q
			if err := parseTimes(timeArg{startFrom, &criteria.StartFrom}, timeArg{endTo, &criteria.EndTo}); err != nil {
				return err
			}
			find := a.projects.FindByTaskCriteria
			if generic {
				find = a.projects.FindByTaskCriteriaGeneric
			}
			projects, err := find(sess, criteria)
			if err != nil {
				return err
			}
			return printProjects(cmd, projects)
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&q.Status, "status", "", "some task has this status")
	fs.StringVar(&q.TitleContains, "title", "", "some task title contains")
	fs.StringVar(&q.AssigneeEmail, "assignee-email", "", "some task assignee email contains")
	fs.StringVar(&q.TagName, "tag", "", "some task has a tag named like this")
	fs.StringVar(&startFrom, "start-from", "", "earliest project start date")
	fs.StringVar(&endTo, "end-to", "", "latest project end date")
	fs.BoolVar(&generic, "generic", false, "build the query from field paths instead of typed accessors")
	return cmd
}

// atFlag defaults to the current time.
func atFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC().Truncate(time.Second), nil
	}
	return parseTime(value)
}

func newCloseProjectsCommand(flags *globalFlags) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Set the end date of open projects whose tasks are all completed",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			end, err := atFlag(at)
			if err != nil {
				return err
			}
			n, err := a.projects.CloseProjectsWithCompletedTasks(sess, end)
			if err != nil {
				return err
			}
			return printAffected(cmd, a, "close", n)
		}),
	}
	cmd.Flags().StringVar(&at, "at", "", "end date, now by default")
	return cmd
}

func newReopenProjectsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen",
		Short: "Clear the end date of closed projects with unfinished tasks",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			n, err := a.projects.ReopenProjectsWithPendingTasks(sess)
			if err != nil {
				return err
			}
			return printAffected(cmd, a, "reopen", n)
		}),
	}
}

func newInitStartCommand(flags *globalFlags) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "init-start",
		Short: "Set a start date on projects that have tasks but none yet",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			start, err := atFlag(at)
			if err != nil {
				return err
			}
			n, err := a.projects.InitStartDateIfHasTasks(sess, start)
			if err != nil {
				return err
			}
			return printAffected(cmd, a, "init-start", n)
		}),
	}
	cmd.Flags().StringVar(&at, "at", "", "start date, now by default")
	return cmd
}

func newDeleteProjectsWithoutTasksCommand(flags *globalFlags) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "delete-without-tasks",
		Short: "Delete projects without tasks that started after --from and ended before --to",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			var fromTime, toTime *time.Time
			if err := parseTimes(timeArg{from, &fromTime}, timeArg{to, &toTime}); err != nil {
				return err
			}
			n, err := a.projects.DeleteProjectsWithoutTasksBetween(sess, fromTime, toTime)
			if err != nil {
				return err
			}
			return printAffected(cmd, a, "delete-without-tasks", n)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "earliest start date")
	cmd.Flags().StringVar(&to, "to", "", "latest end date")
	return cmd
}

func newDeleteInconsistentBudgetsCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-inconsistent-budget",
		Short: "Delete projects whose budget spent exceeds its total",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			n, err := a.projects.DeleteProjectsWithInconsistentBudget(sess)
			if err != nil {
				return err
			}
			return printAffected(cmd, a, "delete-inconsistent-budget", n)
		}),
	}
}
