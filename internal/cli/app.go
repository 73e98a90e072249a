// Package cli implements focusctl, the command line client for the focus
// tracker API.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"focus-tracker/internal/client"
)

const defaultServer = "http://localhost:8080"

// App holds the I/O and settings shared by every command.
type App struct {
	In          io.Reader
	Out         io.Writer
	Err         io.Writer
	SessionPath string

	// Now and Tick drive the session timer.
	Now  func() time.Time
	Tick time.Duration

	// ReadPassword reads a secret without echo. When nil the password is
	// read as a plain line from In.
	ReadPassword func() ([]byte, error)

	server    string
	colorMode string
	input     *bufio.Reader
}

func New() *App {
	a := &App{
		In:   os.Stdin,
		Out:  os.Stdout,
		Err:  os.Stderr,
		Now:  time.Now,
		Tick: 500 * time.Millisecond,
	}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		a.ReadPassword = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return a
}

// Execute runs focusctl with the process arguments.
func Execute(ctx context.Context) error {
	return New().Command().ExecuteContext(ctx)
}

// Command builds the root command and its children.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "focusctl",
		Short: "Track focus sessions against the focus tracker API",
		Long: `focusctl logs in to a focus tracker server, manages tasks and runs
stopwatch or countdown sessions that are saved as trackers.

Examples:
  focusctl login alice
  focusctl tasks add "Write report" --due "next friday"
  focusctl track --minutes 25 --task <task-id>
  focusctl stats --tz Europe/Berlin`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.SessionPath != "" {
				return nil
			}
			path, err := DefaultSessionPath()
			if err != nil {
				return fmt.Errorf("failed to locate session file: %w", err)
			}
			a.SessionPath = path
			return nil
		},
	}
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	root.PersistentFlags().StringVar(&a.server, "server", "",
		"API base URL (defaults to the logged in server or "+defaultServer+")")
	root.PersistentFlags().StringVar(&a.colorMode, "color", "auto",
		"Color output: auto, always, never")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.tasksCmd(),
		a.trackersCmd(),
		a.trackCmd(),
		a.statsCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *App) session() (*Session, error) {
	return LoadSession(a.SessionPath)
}

func (a *App) serverURL(s *Session) string {
	switch {
	case a.server != "":
		return a.server
	case s.Server != "":
		return s.Server
	default:
		return defaultServer
	}
}

// client returns an API client carrying the saved token.
func (a *App) client() (*client.Client, error) {
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, errors.New("not logged in, run `focusctl login` first")
	}
	return client.New(a.serverURL(s), s.Token), nil
}

func (a *App) color() bool {
	switch a.colorMode {
	case "always":
		return true
	case "never":
		return false
	}
	if f, ok := a.Out.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// live reports whether Out is a terminal that can be redrawn in place.
func (a *App) live() bool {
	f, ok := a.Out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func (a *App) reader() *bufio.Reader {
	if a.input == nil {
		a.input = bufio.NewReader(a.In)
	}
	return a.input
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.Out, label+": ")
	line, err := a.reader().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) password() (string, error) {
	if a.ReadPassword == nil {
		return a.prompt("Password")
	}
	fmt.Fprint(a.Out, "Password: ")
	pw, err := a.ReadPassword()
	fmt.Fprintln(a.Out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
