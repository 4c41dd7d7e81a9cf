package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskboard/internal/tui"
)

var (
	authName     string
	authEmail    string
	authPassword string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if authName == "" || authEmail == "" || authPassword == "" {
			user, err := tui.RunLoginTUI(c, true)
			if errors.Is(err, tui.ErrCancelled) {
				fmt.Println("Signup cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Welcome, %s! You are logged in.\n", user.Name)
			return nil
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()
		user, err := c.Signup(ctx, authName, authEmail, authPassword)
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s! You are logged in.\n", user.Name)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if authEmail == "" || authPassword == "" {
			user, err := tui.RunLoginTUI(c, false)
			if errors.Is(err, tui.ErrCancelled) {
				fmt.Println("Login cancelled.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()
		user, err := c.Login(ctx, authEmail, authPassword)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		if err := c.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()
		user, err := c.Init(ctx)
		if err != nil {
			return err
		}
		if user == nil {
			return errNotLoggedIn
		}
		fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{signupCmd, loginCmd} {
		cmd.Flags().StringVarP(&authEmail, "email", "e", "", "account email")
		cmd.Flags().StringVarP(&authPassword, "password", "p", "", "account password")
	}
	signupCmd.Flags().StringVarP(&authName, "name", "n", "", "display name")
}
