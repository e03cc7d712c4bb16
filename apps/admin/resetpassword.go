package main

import (
	"github.com/spf13/cobra"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/user"
)

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var uname string

	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password; the new password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.promptPassword()
			if err != nil {
				return err
			}
			data := user.ResetPassword{Username: uname, Password: pwd}
			if err = cli.usrSvc.ResetPassword(cmd.Context(), data); err != nil {
				return err
			}
			success.Fprintf(cli.out, "Password of %q updated\n", core.CleanString(uname, true /* lower */))
			return nil
		},
	}
	cmd.Flags().StringVarP(&uname, "username", "u", "", "the user's username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
