package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"focus-tracker/internal/api"
	"focus-tracker/internal/client"
)

func (a *App) registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			pass, err := a.password()
			if err != nil {
				return err
			}

			server := a.serverURL(s)
			res, err := client.New(server, "").Register(cmd.Context(), args[0], args[1], pass)
			if err != nil {
				return err
			}
			return a.remember(server, res, "Registered")
		},
	}
}

func (a *App) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and remember the token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}

			var username string
			if len(args) == 1 {
				username = args[0]
			} else if username, err = a.prompt("Username"); err != nil {
				return err
			}
			pass, err := a.password()
			if err != nil {
				return err
			}

			server := a.serverURL(s)
			res, err := client.New(server, "").Login(cmd.Context(), username, pass)
			if err != nil {
				return err
			}
			return a.remember(server, res, "Logged in")
		},
	}
}

func (a *App) remember(server string, res *api.Session, verb string) error {
	err := SaveSession(a.SessionPath, &Session{
		Server:   server,
		Token:    res.Token,
		Username: res.User.Username,
		SavedAt:  a.Now(),
	})
	if err != nil {
		return err
	}
	a.success(fmt.Sprintf("%s as %s", verb, res.User.Username))
	return nil
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ClearSession(a.SessionPath); err != nil {
				return err
			}
			a.success("Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check the saved token with the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			user, err := c.Verify(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.Out, "%s <%s>\n", a.style(styleBold, user.Username), user.Email)
			a.muted("member since " + user.CreatedAt.Local().Format("2 Jan 2006"))
			return nil
		},
	}
}
