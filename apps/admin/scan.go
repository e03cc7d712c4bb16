package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/gate"
)

func (cli *commandLine) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan PAYLOAD",
		Short: "Mark a student present from the text of their ID card QR code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cli.session()
			if err != nil {
				return err
			}
			if !gate.HasFeature(sess.Role, gate.AttendanceScan) {
				return core.ErrForbidden
			}

			staged, err := cli.scanner.Stage(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Scanned: %s, class %s\n", staged.Label(), staged.Payload.Class)
			if !cli.confirm("Mark present?") {
				_, _ = cli.scanner.Take(staged.Token)
				warning.Fprintln(cli.out, "Cancelled")
				return nil
			}

			msg, err := cli.scanner.ConfirmToken(cmd.Context(), staged.Token, sess)
			if err != nil {
				return err
			}
			success.Fprintln(cli.out, msg)
			return nil
		},
	}
}
