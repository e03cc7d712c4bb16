package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/sunrise/core/gate"
	"github.com/trezcool/sunrise/core/session"
)

func (cli *commandLine) loginCmd() *cobra.Command {
	var uname string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; the session is kept until logout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			usr, err := cli.usrSvc.Authenticate(cmd.Context(), uname, pwd)
			if err != nil {
				return err
			}
			if err = cli.sessions.Save(session.New(usr)); err != nil {
				return err
			}
			success.Fprintf(cli.out, "Logged in as %s (%s)\n", usr.DisplayName(), usr.Role)
			fmt.Fprintf(cli.out, "Home: %s\n", gate.Landing(usr.Role))
			return nil
		},
	}
	cmd.Flags().StringVarP(&uname, "username", "u", "", "your username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (cli *commandLine) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.sessions.Clear(); err != nil {
				return err
			}
			success.Fprintln(cli.out, "Logged out")
			return nil
		},
	}
}

func (cli *commandLine) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cli.session()
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "%s (%s)\n", sess.User.Username, sess.Role)
			return nil
		},
	}
}
