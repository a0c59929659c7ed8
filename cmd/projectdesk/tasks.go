package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/application"
	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

func newTasksCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "tasks", Short: "Search and bulk-edit tasks"}
	cmd.AddCommand(
		newTaskGetCommand(flags),
		newTaskSearchCommand(flags),
		newTaskFindCommand(flags),
		newUpdateTaskStatusCommand(flags),
		newDeleteTasksCommand(flags),
		newReassignTasksCommand(flags),
	)
	return cmd
}

func printTasks(cmd *cobra.Command, tasks []*domain.Task) error {
	return printYAML(cmd.OutOrStdout(), taskViews(tasks))
}

func newTaskGetCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: inSession(flags, func(cmd *cobra.Command, args []string, a *app, sess session.DbSession) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.tasks.Get(sess, id)
			if err != nil {
				return err
			}
			return printTasks(cmd, []*domain.Task{t})
		}),
	}
}

func newTaskSearchCommand(flags *globalFlags) *cobra.Command {
	var (
		f              application.TaskFilter
		dueFrom, dueTo string
		page           pageFlags
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search tasks by their fields, tags, assignee and project",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			filter := f
			if err := parseTimes(timeArg{dueFrom, &filter.DueFrom}, timeArg{dueTo, &filter.DueTo}); err != nil {
				return err
			}
			result, err := a.tasks.FindTasks(sess, filter, page.request())
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), pageView[taskView]{
				Items: taskViews(result.Items),
				Total: result.Total,
				Page:  result.Number,
				Size:  result.Size,
				Pages: result.TotalPages(),
			})
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&f.Title, "title", "", "title contains")
	fs.StringVar(&f.Description, "description", "", "description contains")
	fs.StringVar(&f.Status, "status", "", "task status")
	fs.StringVar(&f.TagName, "tag", "", "some tag name contains")
	fs.StringVar(&f.AssigneeEmail, "assignee-email", "", "assignee email contains")
	fs.StringVar(&f.ProjectName, "project-name", "", "project name contains")
	fs.StringVar(&f.SearchText, "search", "", "text in title, description, project name, assignee email or tags")
	fs.StringVar(&dueFrom, "due-from", "", "earliest due date")
	fs.StringVar(&dueTo, "due-to", "", "latest due date")
	page.register(cmd)
	return cmd
}

func newTaskFindCommand(flags *globalFlags) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Tasks by status, tag, assignee and project ids",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
		ids := make(map[string]*int64, 3)
		for _, name := range []string{"tag", "assignee", "project"} {
			id, err := int64Flag(cmd, name)
			if err != nil {
				return err
			}
			ids[name] = id
		}
		tasks, err := a.tasks.Search(sess, status, ids["tag"], ids["assignee"], ids["project"])
		if err != nil {
			return err
		}
		return printTasks(cmd, tasks)
	})
	cmd.Flags().StringVar(&status, "status", "", "task status")
	cmd.Flags().Int64("tag", 0, "tag id")
	cmd.Flags().Int64("assignee", 0, "assignee user id")
	cmd.Flags().Int64("project", 0, "project id")
	return cmd
}

func newUpdateTaskStatusCommand(flags *globalFlags) *cobra.Command {
	var from, to, dueBefore string
	cmd := &cobra.Command{
		Use:   "update-status",
		Short: "Move tasks in status --from to status --to",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
		var due *time.Time
		if err := parseTimes(timeArg{dueBefore, &due}); err != nil {
			return err
		}
		projectID, err := int64Flag(cmd, "project")
		if err != nil {
			return err
		}
		n, err := a.tasks.UpdateStatusByProjectAndDue(sess, from, to, projectID, due)
		if err != nil {
			return err
		}
		return printAffected(cmd, a, "update-status", n)
	})
	cmd.Flags().StringVar(&from, "from", "", "current status")
	cmd.Flags().StringVar(&to, "to", "", "new status, Pending by default")
	cmd.Flags().StringVar(&dueBefore, "due-before", "", "only tasks due before this date")
	cmd.Flags().Int64("project", 0, "project id")
	return cmd
}

func newDeleteTasksCommand(flags *globalFlags) *cobra.Command {
	var status, dueBefore string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete tasks in --status due before --due-before",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			var due *time.Time
			if err := parseTimes(timeArg{dueBefore, &due}); err != nil {
				return err
			}
			n, err := a.tasks.DeleteByStatusAndDueBefore(sess, status, due)
			if err != nil {
				return err
			}
			return printAffected(cmd, a, "delete", n)
		}),
	}
	cmd.Flags().StringVar(&status, "status", "", "task status")
	cmd.Flags().StringVar(&dueBefore, "due-before", "", "only tasks due before this date")
	return cmd
}

func newReassignTasksCommand(flags *globalFlags) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "reassign",
		Short: "Hand the tasks of --from-user over to --to-user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
		ids := make(map[string]*int64, 3)
		for _, name := range []string{"from-user", "to-user", "project"} {
			id, err := int64Flag(cmd, name)
			if err != nil {
				return err
			}
			ids[name] = id
		}
		n, err := a.tasks.ReassignTasks(sess, ids["from-user"], ids["to-user"], ids["project"], status)
		if err != nil {
			return err
		}
		return printAffected(cmd, a, "reassign", n)
	})
	cmd.Flags().Int64("from-user", 0, "current assignee id")
	cmd.Flags().Int64("to-user", 0, "new assignee id")
	cmd.Flags().Int64("project", 0, "project id")
	cmd.Flags().StringVar(&status, "status", "", "task status")
	return cmd
}
