package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"taskboard/internal/client"
	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
	"taskboard/internal/tui"
)

var (
	listStatus string
	listSearch string
	listFrom   string
	listTo     string
	listLimit  int
	listOffset int

	taskTitle       string
	taskDescription string
	taskStatus      string
	taskPriority    string
	taskDue         string
	taskClearDue    bool

	showActivity bool
)

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task", "t"},
	Short:   "List and manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List your tasks, soonest due first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		opts := client.ListOptions{
			Search:    listSearch,
			StartDate: listFrom,
			EndDate:   listTo,
			Limit:     listLimit,
			Offset:    listOffset,
		}
		if listStatus != "" {
			s, ok := domain.ParseStatus(listStatus)
			if !ok {
				return fmt.Errorf("unknown status %q", listStatus)
			}
			opts.Status = s
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()
		tasks, total, err := c.ListTasks(ctx, opts)
		if err != nil {
			return explain(err)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}
		printTasks(tasks)
		if int64(len(tasks)) < total {
			fmt.Printf("\nShowing %d of %d tasks (use --offset to page).\n", len(tasks), total)
		}
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a task (opens the form when no title is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		title := taskTitle
		if len(args) == 1 {
			title = args[0]
		}
		if title == "" {
			task, err := tui.RunFormTUI(c, nil)
			if err != nil {
				return err
			}
			if task == nil {
				fmt.Println("Task creation cancelled.")
				return nil
			}
			fmt.Printf("Created task %s: %s\n", task.ID, task.Title)
			return nil
		}

		req := dto.CreateTaskRequest{
			Title:       title,
			Description: taskDescription,
			Status:      taskStatus,
			Priority:    taskPriority,
		}
		if taskDue != "" {
			req.DueDate = &taskDue
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		task, err := c.CreateTask(ctx, req)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Created task %s: %s\n", task.ID, task.Title)
		return nil
	},
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task with its subtasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		task, err := c.GetTask(ctx, args[0])
		if err != nil {
			return explain(err)
		}
		printTask(task)

		if !showActivity {
			return nil
		}
		activities, err := c.Activity(ctx, task.ID)
		if err != nil {
			return explain(err)
		}
		fmt.Println("\nActivity:")
		for _, a := range activities {
			line := fmt.Sprintf("  %s  %s", a.CreatedAt.Local().Format("2006-01-02 15:04"), a.Action)
			if a.Field != "" {
				line += " " + a.Field
			}
			if a.OldValue != "" || a.NewValue != "" {
				line += fmt.Sprintf(": %q → %q", a.OldValue, a.NewValue)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var tasksEditCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Change a task (opens the auto-saving form when no flags are given)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		patch := client.TaskPatch{}
		flags := cmd.Flags()
		if flags.Changed("title") {
			patch.Title(taskTitle)
		}
		if flags.Changed("description") {
			patch.Description(taskDescription)
		}
		if flags.Changed("status") {
			s, ok := domain.ParseStatus(taskStatus)
			if !ok {
				return fmt.Errorf("unknown status %q", taskStatus)
			}
			patch.Status(s)
		}
		if flags.Changed("priority") {
			p, ok := domain.ParsePriority(taskPriority)
			if !ok {
				return fmt.Errorf("unknown priority %q", taskPriority)
			}
			patch.Priority(p)
		}
		if flags.Changed("due") {
			patch.DueDate(taskDue)
		}
		if taskClearDue {
			patch.DueDate("")
		}

		if len(patch) == 0 {
			task, err := c.GetTask(ctx, args[0])
			if err != nil {
				return explain(err)
			}
			saved, err := tui.RunFormTUI(c, task)
			if err != nil {
				return err
			}
			if saved != nil {
				fmt.Printf("Saved task %s: %s\n", saved.ID, saved.Title)
			}
			return nil
		}

		task, err := c.PatchTask(ctx, args[0], patch)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Updated task %s: %s\n", task.ID, task.Title)
		return nil
	},
}

var tasksMoveCmd = &cobra.Command{
	Use:   "mv <task-id> <status>",
	Short: "Move a task to pending, inprogress or completed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		status, ok := domain.ParseStatus(args[1])
		if !ok {
			return fmt.Errorf("unknown status %q", args[1])
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		task, err := c.UpdateStatus(ctx, args[0], status)
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Moved %q to %s\n", task.Title, task.Status.Label())
		return nil
	},
}

var tasksRemoveCmd = &cobra.Command{
	Use:     "rm <task-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		if err := c.DeleteTask(ctx, args[0]); err != nil {
			return explain(err)
		}
		fmt.Println("Task deleted.")
		return nil
	},
}

func printTasks(tasks []*domain.Task) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tSUBTASKS")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, truncate(t.Title, 40), t.Status.Label(), t.Priority, formatDue(t.DueDate), subtaskProgress(t))
	}
	w.Flush()
}

func printTask(t *domain.Task) {
	fmt.Printf("%s\n%s\n", t.Title, strings.Repeat("─", len([]rune(t.Title))))
	fmt.Printf("ID:        %s\n", t.ID)
	fmt.Printf("Status:    %s\n", t.Status.Label())
	fmt.Printf("Priority:  %s\n", t.Priority)
	fmt.Printf("Due:       %s\n", formatDue(t.DueDate))
	fmt.Printf("Created:   %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Updated:   %s\n", t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if t.Description != "" {
		fmt.Printf("\n%s\n", t.Description)
	}
	if len(t.Subtasks) > 0 {
		fmt.Printf("\nSubtasks (%s):\n", subtaskProgress(t))
		for _, s := range t.Subtasks {
			mark := " "
			if s.Status == domain.SubtaskCompleted {
				mark = "x"
			}
			fmt.Printf("  [%s] %s  %s\n", mark, s.Title, s.ID)
		}
	}
}

func formatDue(due *time.Time) string {
	if due == nil {
		return "-"
	}
	d := due.UTC()
	if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 {
		return d.Format("2006-01-02")
	}
	return d.Local().Format("2006-01-02 15:04")
}

func subtaskProgress(t *domain.Task) string {
	if len(t.Subtasks) == 0 {
		return "-"
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.Status == domain.SubtaskCompleted {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(t.Subtasks))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	tasksListCmd.Flags().StringVarP(&listStatus, "status", "s", "", "only this status")
	tasksListCmd.Flags().StringVarP(&listSearch, "search", "q", "", "only tasks matching this text")
	tasksListCmd.Flags().StringVar(&listFrom, "from", "", "due on or after this date (YYYY-MM-DD)")
	tasksListCmd.Flags().StringVar(&listTo, "to", "", "due on or before this date (YYYY-MM-DD)")
	tasksListCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "page size")
	tasksListCmd.Flags().IntVar(&listOffset, "offset", 0, "skip this many tasks")

	for _, cmd := range []*cobra.Command{tasksAddCmd, tasksEditCmd} {
		cmd.Flags().StringVarP(&taskTitle, "title", "t", "", "task title")
		cmd.Flags().StringVarP(&taskDescription, "description", "d", "", "task description")
		cmd.Flags().StringVarP(&taskStatus, "status", "s", "", "pending, inprogress or completed")
		cmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "low, medium or high")
		cmd.Flags().StringVar(&taskDue, "due", "", "due date (YYYY-MM-DD or RFC3339)")
	}
	tasksEditCmd.Flags().BoolVar(&taskClearDue, "clear-due", false, "remove the due date")
	tasksShowCmd.Flags().BoolVarP(&showActivity, "activity", "a", false, "include the activity log")

	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksShowCmd, tasksEditCmd, tasksMoveCmd, tasksRemoveCmd)
}
