package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskboard/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive task board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		user, err := c.Init(ctx)
		cancel()
		if err != nil {
			return err
		}
		if user == nil {
			return errNotLoggedIn
		}
		for {
			err := tui.RunBoardTUI(c)
			if !errors.Is(err, tui.ErrSessionExpired) {
				return err
			}
			fmt.Println("Your session expired. Log in again to reopen the board.")
			_, err = tui.RunLoginTUI(c, false)
			if errors.Is(err, tui.ErrCancelled) {
				return errNotLoggedIn
			}
			if err != nil {
				return err
			}
		}
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show task counts per status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loggedInClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		counts, err := c.Stats(ctx)
		if err != nil {
			return explain(err)
		}
		fmt.Println(tui.RenderChart(counts, 70))
		return nil
	},
}
