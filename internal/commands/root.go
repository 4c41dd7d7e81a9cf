package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"taskboard/internal/client"
	"taskboard/pkg/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	apiURL  string
	verbose bool
)

// errNotLoggedIn is shown by every command that needs a session.
var errNotLoggedIn = errors.New("not logged in, run `taskboard login` first")

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "A terminal client for the taskboard API",
	Long: `taskboard manages your tasks from the terminal: a three-column board,
task forms that save as you type, search and a status chart.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		opts := logging.Options{SystemName: "taskboard", Level: "warn", Output: io.Discard}
		if verbose {
			opts.Level = "debug"
			opts.Output = os.Stderr
		}
		opts.File = os.Getenv("TASKBOARD_LOG_FILE")
		logging.Init(opts)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("taskboard %s (commit %s, built %s)\n", version, commit, date)
	},
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $TASKBOARD_API_URL or "+client.DefaultBaseURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(subtasksCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(versionCmd)
}

// newClient builds a client on the stored session.
func newClient() (*client.Client, error) {
	path, err := client.DefaultSessionPath()
	if err != nil {
		return nil, err
	}
	session, err := client.LoadSession(path)
	if err != nil {
		return nil, err
	}
	base := apiURL
	if base == "" {
		base = os.Getenv("TASKBOARD_API_URL")
	}
	return client.New(base, session), nil
}

// loggedInClient is newClient for commands that need a session.
func loggedInClient() (*client.Client, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	if !c.Session().LoggedIn() {
		return nil, errNotLoggedIn
	}
	return c, nil
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

// explain turns a 401 into a hint to log in again.
func explain(err error) error {
	if client.IsStatus(err, 401) {
		return fmt.Errorf("%w (session cleared, run `taskboard login`)", err)
	}
	return err
}
