package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/sunrise/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var nu user.NewUser
	var role string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user; the password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			nu.Password = pwd
			nu.Role = user.Role(role)
			return cli.addUser(cmd, nu)
		},
	}
	cmd.Flags().StringVarP(&nu.Username, "username", "u", "", "the user's username")
	cmd.Flags().StringVarP(&role, "role", "r", "", "admin, teacher or student")
	cmd.Flags().StringVarP(&nu.Email, "email", "e", "", "the user's email")
	cmd.Flags().StringVarP(&nu.FullName, "name", "n", "", "the user's full name")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func (cli *commandLine) addUser(cmd *cobra.Command, nu user.NewUser) error {
	usr, err := cli.usrSvc.Create(cmd.Context(), nu)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	success.Fprintf(cli.out, "User %q created (%s)\n", usr.Username, usr.Role)
	return nil
}
