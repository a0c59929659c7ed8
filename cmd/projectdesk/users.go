package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/domain"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

func newUsersCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Search users"}
	cmd.AddCommand(
		newUserGetCommand(flags),
		newUserSearchCommand(flags),
		newUsersWithMinTasksCommand(flags),
	)
	return cmd
}

func printUsers(cmd *cobra.Command, users []*domain.User) error {
	return printYAML(cmd.OutOrStdout(), userViews(users))
}

func newUserGetCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: inSession(flags, func(cmd *cobra.Command, args []string, a *app, sess session.DbSession) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			u, err := a.users.Get(sess, id)
			if err != nil {
				return err
			}
			return printUsers(cmd, []*domain.User{u})
		}),
	}
}

func newUserSearchCommand(flags *globalFlags) *cobra.Command {
	var role, from, to string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Users with --role created between --from and --to",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			var fromTime, toTime *time.Time
			if err := parseTimes(timeArg{from, &fromTime}, timeArg{to, &toTime}); err != nil {
				return err
			}
			users, err := a.users.SearchByRoleAndCreatedBetween(sess, role, fromTime, toTime)
			if err != nil {
				return err
			}
			return printUsers(cmd, users)
		}),
	}
	cmd.Flags().StringVar(&role, "role", "", "role name, case-insensitive")
	cmd.Flags().StringVar(&from, "from", "", "created at or after")
	cmd.Flags().StringVar(&to, "to", "", "created at or before")
	return cmd
}

func newUsersWithMinTasksCommand(flags *globalFlags) *cobra.Command {
	var (
		role string
		min  int64
	)
	cmd := &cobra.Command{
		Use:   "with-min-tasks",
		Short: "Users with --role assigned at least --min tasks in --project",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
		projectID, err := int64Flag(cmd, "project")
		if err != nil {
			return err
		}
		users, err := a.users.FindByRoleWithMinTasksInProject(sess, role, projectID, min)
		if err != nil {
			return err
		}
		return printUsers(cmd, users)
	})
	cmd.Flags().StringVar(&role, "role", "", "role name, case-insensitive")
	cmd.Flags().Int64Var(&min, "min", 1, "minimum number of tasks")
	cmd.Flags().Int64("project", 0, "project id")
	return cmd
}
