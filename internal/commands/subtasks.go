package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskboard/internal/client"
	"taskboard/internal/task/domain"
)

var subtaskUndo bool

var subtasksCmd = &cobra.Command{
	Use:     "subtasks",
	Aliases: []string{"sub"},
	Short:   "Manage a task's checklist",
}

var subtasksAddCmd = &cobra.Command{
	Use:   "add <task-id> <title>",
	Short: "Add a checklist item",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		task, err := c.AddSubtask(ctx, args[0], strings.Join(args[1:], " "))
		if err != nil {
			return explain(err)
		}
		added := task.Subtasks[len(task.Subtasks)-1]
		fmt.Printf("Added subtask %s to %q\n", added.ID, task.Title)
		return nil
	},
}

var subtasksDoneCmd = &cobra.Command{
	Use:   "done <task-id> <subtask-id>",
	Short: "Tick a checklist item (--undo to untick)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		status := domain.SubtaskCompleted
		if subtaskUndo {
			status = domain.SubtaskPending
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		task, err := c.UpdateSubtask(ctx, args[0], args[1], client.SubtaskPatch{}.Status(status))
		if err != nil {
			return explain(err)
		}
		fmt.Printf("%q checklist: %s\n", task.Title, subtaskProgress(task))
		return nil
	},
}

var subtasksRemoveCmd = &cobra.Command{
	Use:   "rm <task-id> <subtask-id>",
	Short: "Remove a checklist item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		task, err := c.RemoveSubtask(ctx, args[0], args[1])
		if err != nil {
			return explain(err)
		}
		fmt.Printf("Removed subtask from %q\n", task.Title)
		return nil
	},
}

func init() {
	subtasksDoneCmd.Flags().BoolVar(&subtaskUndo, "undo", false, "mark the item pending again")
	subtasksCmd.AddCommand(subtasksAddCmd, subtasksDoneCmd, subtasksRemoveCmd)
}
