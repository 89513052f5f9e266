package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/VeraLinno/Task-management-utility/internal/engine"
	"github.com/VeraLinno/Task-management-utility/internal/model"
	"github.com/VeraLinno/Task-management-utility/internal/validation"
	"github.com/spf13/cobra"
)

// taskFlags are the editable task fields shared by add and update.
type taskFlags struct {
	title        string
	description  string
	status       string
	priority     string
	due          string
	tags         []string
	dependencies []string
	repeat       string
	every        int
	until        string
}

func (f *taskFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.title, "title", "t", "", "Task title")
	flags.StringVarP(&f.description, "description", "d", "", "Task description")
	flags.StringVarP(&f.status, "status", "s", "", "Status (todo, in-progress, done)")
	flags.StringVarP(&f.priority, "priority", "p", "", "Priority (low, medium, high)")
	flags.StringVar(&f.due, "due", "", "Due date, YYYY-MM-DD or RFC 3339 timestamp")
	flags.StringSliceVar(&f.tags, "tag", nil, "Tag, repeatable or comma separated")
	flags.StringSliceVar(&f.dependencies, "depends-on", nil, "Id of a task that must be done first")
	flags.StringVar(&f.repeat, "repeat", "", "Recurrence (daily, weekly, monthly, custom, none)")
	flags.IntVar(&f.every, "every", 0, "Days between occurrences for custom recurrence")
	flags.StringVar(&f.until, "until", "", "Last day of the recurrence, YYYY-MM-DD")
}

// raw turns the flags the user set into the loose input the engine validates.
func (f *taskFlags) raw(cmd *cobra.Command) (map[string]any, error) {
	changed := cmd.Flags().Changed
	raw := map[string]any{}

	if changed("title") {
		raw["title"] = f.title
	}
	if changed("description") {
		raw["description"] = f.description
	}
	if changed("status") {
		raw["status"] = f.status
	}
	if changed("priority") {
		raw["priority"] = f.priority
	}
	if changed("due") {
		raw["dueDate"] = f.due
	}
	if changed("tag") {
		raw["tags"] = f.tags
	}
	if changed("depends-on") {
		raw["dependencies"] = f.dependencies
	}

	if !changed("repeat") {
		if changed("every") || changed("until") {
			return nil, errors.New("--every and --until need --repeat")
		}
		return raw, nil
	}
	if f.repeat == "none" {
		raw["recurrence"] = nil
		return raw, nil
	}
	rec := map[string]any{"frequency": f.repeat}
	if changed("every") {
		rec["daysInterval"] = f.every
	}
	if changed("until") {
		if _, ok := validation.ParseDateInput(f.until); !ok {
			return nil, fmt.Errorf("--until must be a YYYY-MM-DD date, got %q", f.until)
		}
		rec["endDate"] = f.until
	}
	raw["recurrence"] = rec
	return raw, nil
}

func addCmd(a *app) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Example: `  taskctl add --title "Pay rent" --due 2026-11-01 --priority high --repeat monthly
  taskctl add -t "Ship release" --due 2026-11-20 --depends-on 3f2c...`,
		Args: cobra.NoArgs,
	}
	f.bind(cmd)
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		raw, err := f.raw(cmd)
		if err != nil {
			return err
		}
		task, err := a.engine.Create(cmd.Context(), raw)
		if err != nil {
			return err
		}
		return a.formatter.render(a.out, task, func(w io.Writer) error {
			return writeTaskDetail(w, task)
		})
	})
	return cmd
}

func updateCmd(a *app) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Long:  "Only the flags given are changed. Use --repeat none to stop a recurrence.",
		Args:  cobra.ExactArgs(1),
	}
	f.bind(cmd)
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		raw, err := f.raw(cmd)
		if err != nil {
			return err
		}
		raw["id"] = args[0]
		task, err := a.engine.Update(cmd.Context(), raw)
		if err != nil {
			return err
		}
		return a.formatter.render(a.out, task, func(w io.Writer) error {
			return writeTaskDetail(w, task)
		})
	})
	return cmd
}

func doneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done once its dependencies are done",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		task, err := a.engine.Update(cmd.Context(), map[string]any{
			"id":     args[0],
			"status": string(model.StatusDone),
		})
		if err != nil {
			return err
		}
		return a.formatter.render(a.out, task, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "completed %s (%s)\n", task.ID, task.Title)
			return err
		})
	})
	return cmd
}

func listCmd(a *app) *cobra.Command {
	var (
		c         engine.Criteria
		status    string
		priority  string
		sortField string
		order     string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, optionally filtered and sorted",
		Args:    cobra.NoArgs,
	}
	flags := cmd.Flags()
	flags.StringVarP(&status, "status", "s", "", "Only tasks with this status")
	flags.StringVarP(&priority, "priority", "p", "", "Only tasks with this priority")
	flags.StringVar(&c.Tag, "tag", "", "Only tasks carrying this tag")
	flags.StringVar(&c.DueBeforeISO, "due-before", "", "Only tasks due on or before this date")
	flags.StringVar(&c.DueAfterISO, "due-after", "", "Only tasks due on or after this date")
	flags.StringVarP(&c.Search, "search", "q", "", "Only tasks whose title or description contains this text")
	flags.StringVar(&sortField, "sort", "", "Sort by dueDate, priority, title, status, createdAt or updatedAt")
	flags.StringVar(&order, "order", "", "Sort direction (asc, desc)")

	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		sortCfg, err := engine.ParseSortConfig(sortField, order)
		if err != nil {
			return err
		}
		c.Status = model.Status(status)
		c.Priority = model.Priority(priority)

		tasks, err := a.engine.Query(cmd.Context(), c, sortCfg)
		if err != nil {
			return err
		}
		return a.formatter.render(a.out, tasks, func(w io.Writer) error {
			return writeTaskTable(w, tasks)
		})
	})
	return cmd
}

func showCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		task, err := a.engine.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return a.formatter.render(a.out, task, func(w io.Writer) error {
			return writeTaskDetail(w, task)
		})
	})
	return cmd
}

func rmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a task no other task depends on",
		Args:    cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		removed, err := a.engine.Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		result := map[string]any{"id": args[0], "removed": removed}
		return a.formatter.render(a.out, result, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "removed %s\n", args[0])
			return err
		})
	})
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize tasks by status and priority",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		stats, err := a.engine.GetStatistics(cmd.Context())
		if err != nil {
			return err
		}
		return a.formatter.render(a.out, stats, func(w io.Writer) error {
			return writeStatistics(w, stats)
		})
	})
	return cmd
}

func upcomingCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show the next occurrences of recurring tasks",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum number of tasks")
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		if limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		items, err := a.engine.GetUpcomingRecurring(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return a.formatter.render(a.out, items, func(w io.Writer) error {
			return writeUpcoming(w, items)
		})
	})
	return cmd
}

func canCompleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "can-complete <id>",
		Short: "Report whether a task's dependencies are all done",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		check, err := a.engine.CanCompleteTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return a.formatter.render(a.out, check, func(w io.Writer) error {
			return writeCompletionCheck(w, args[0], check)
		})
	})
	return cmd
}

func clearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task in the collection",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting all tasks")
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		if !yes {
			return errors.New("refusing to clear without --yes")
		}
		if err := a.store.Clear(cmd.Context()); err != nil {
			return model.WrapStorage(err)
		}
		result := map[string]any{"cleared": true}
		return a.formatter.render(a.out, result, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, "all tasks deleted")
			return err
		})
	})
	return cmd
}
