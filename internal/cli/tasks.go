package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"focus-tracker/internal/api"
)

func (a *App) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "List and manage tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			tasks, err := c.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			a.printTasks(tasks)
			return nil
		},
	}

	var due, status string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			req := api.TaskRequest{Name: &name}
			if due != "" {
				req.DueDate = api.Value(due)
			}
			if status != "" {
				req.Status = &status
			}
			task, err := c.CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.success(fmt.Sprintf("Created task %s (%s)", task.Name, task.ID))
			return nil
		},
	}
	add.Flags().StringVar(&due, "due", "", `Due date, e.g. "2025-12-15" or "next friday"`)
	add.Flags().StringVar(&status, "status", "", "Initial status (default pending)")

	done := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			completed, st := true, "done"
			task, err := c.UpdateTask(cmd.Context(), args[0], api.TaskRequest{Completed: &completed, Status: &st})
			if err != nil {
				return err
			}
			a.success("Completed " + task.Name)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its trackers",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			deleted, err := c.DeleteTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.success("Deleted " + deleted.Name)
			return nil
		},
	}

	cmd.AddCommand(add, done, rm)
	return cmd
}

func (a *App) printTasks(tasks []api.Task) {
	if len(tasks) == 0 {
		a.muted("No tasks yet. Add one with `focusctl tasks add <name>`.")
		return
	}

	w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDUE")
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "✓"
		}
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Local().Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\n", t.ID, mark, t.Name, t.Status, due)
	}
	_ = w.Flush()
}

func (a *App) trackersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trackers",
		Aliases: []string{"sessions"},
		Short:   "List recorded sessions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			trackers, err := c.ListTrackers(cmd.Context())
			if err != nil {
				return err
			}
			if len(trackers) == 0 {
				a.muted("No sessions recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(a.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tDURATION\tDATE\tTASK")
			for _, t := range trackers {
				task := "-"
				if t.TaskID != nil {
					task = *t.TaskID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Type, formatSeconds(t.Duration),
					t.CreatedAt.Local().Format("2006-01-02 15:04"), task)
			}
			return w.Flush()
		},
	}

	rm := &cobra.Command{
		Use:     "rm <tracker-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a recorded session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if _, err := c.DeleteTracker(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.success("Deleted session " + args[0])
			return nil
		},
	}

	cmd.AddCommand(rm)
	return cmd
}
