package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search task titles, descriptions and subtasks",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		query := strings.Join(args, " ")
		tasks, err := c.Search(ctx, query)
		if err != nil {
			return explain(err)
		}
		if len(tasks) == 0 {
			fmt.Printf("No tasks match %q.\n", query)
			return nil
		}
		printTasks(tasks)
		return nil
	},
}
