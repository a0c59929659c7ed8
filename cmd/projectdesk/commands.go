package main

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/projectdesk/projectdesk/projects/infrastructure"
	"github.com/krew-solutions/projectdesk/projectdesk/session"
)

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "projectdesk",
		Short:         "Query and bulk-edit projects, tasks and users",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file; DB_* and PROJECTDESK_* variables override it")
	root.PersistentFlags().StringVar(&flags.sqlitePath, "sqlite", "", "use the SQLite database file at this path instead of PostgreSQL")
	root.PersistentFlags().StringVar(&flags.metricsPath, "metrics-file", "", "write Prometheus metrics of the run to this file")
	root.AddCommand(
		newMigrateCommand(flags),
		newGetCommand(flags),
		newProjectsCommand(flags),
		newTasksCommand(flags),
		newUsersCommand(flags),
	)
	return root
}

// withApp builds the services for one command run and releases them after.
func withApp(flags *globalFlags, fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.close()
		if err := fn(cmd, args, a); err != nil {
			return err
		}
		if flags.metricsPath != "" {
			return errors.Wrap(a.metrics.WriteTextfile(flags.metricsPath), "write metrics")
		}
		return nil
	}
}

// inSession is withApp for commands that need one database session.
func inSession(flags *globalFlags, fn func(cmd *cobra.Command, args []string, a *app, sess session.DbSession) error) func(*cobra.Command, []string) error {
	return withApp(flags, func(cmd *cobra.Command, args []string, a *app) error {
		return a.run(cmd.Context(), func(sess session.DbSession) error {
			return fn(cmd, args, a, sess)
		})
	})
}

func newMigrateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema",
		Args:  cobra.NoArgs,
		RunE: inSession(flags, func(cmd *cobra.Command, _ []string, a *app, sess session.DbSession) error {
			if err := infrastructure.Migrate(sess, a.dialect); err != nil {
				return err
			}
			a.logger.Info("schema created", "dialect", a.dialect)
			return nil
		}),
	}
}

func newGetCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get ENTITY ID",
		Short: "Show one row of an entity such as project, budget or milestone",
		Args:  cobra.ExactArgs(2),
		RunE: inSession(flags, func(cmd *cobra.Command, args []string, a *app, sess session.DbSession) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			row, err := a.repos.Get(sess, args[0], id)
			if err != nil {
				return err
			}
			view, err := entityView(row)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), view)
		}),
	}
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid id \"%s\"", value)
	}
	return id, nil
}

// timeArg binds a raw flag value to the optional time it is parsed into.
type timeArg struct {
	raw    string
	target **time.Time
}

func parseTimes(args ...timeArg) error {
	for _, arg := range args {
		t, err := optionalTime(arg.raw)
		if err != nil {
			return err
		}
		*arg.target = t
	}
	return nil
}

func printAffected(cmd *cobra.Command, a *app, operation string, affected int64) error {
	a.bulkApplied(operation, affected)
	return printYAML(cmd.OutOrStdout(), affectedView{Operation: operation, Affected: affected})
}
