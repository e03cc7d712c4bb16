package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/fatih/color"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/attendance"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/session"
	"github.com/trezcool/sunrise/core/store"
	"github.com/trezcool/sunrise/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in, run `admin login` first")

	success = color.New(color.FgGreen, color.Bold)
	warning = color.New(color.FgYellow)
	failure = color.New(color.FgRed, color.Bold)
	heading = color.New(color.FgCyan, color.Bold)
)

type commandLine struct {
	conf       *core.Config
	db         *sqlx.DB // nil for the in-memory engine
	store      store.Store
	reg        *schema.Registry
	usrSvc     *user.Service
	sessions   session.Store
	scanner    *attendance.Scanner
	translator ut.Translator

	in  *bufio.Reader
	out io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Sunrise school administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.migrateCmd(),
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
		cli.loginCmd(),
		cli.logoutCmd(),
		cli.whoamiCmd(),
		cli.tablesCmd(),
		cli.manageCmd(),
		cli.scanCmd(),
	)
	return root
}

// run executes args, without the program name.
func (cli *commandLine) run(args []string) error {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	root := cli.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

// report prints err the way the API would describe it.
func (cli *commandLine) report(err error) {
	switch cause := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		for fld, msg := range core.TranslateErrors(cause, cli.translator) {
			failure.Fprintf(cli.out, "%s: %s\n", fld, msg)
		}
	case *core.ValidationError:
		if len(cause.Fields) == 0 {
			failure.Fprintf(cli.out, "error: %s\n", cause.Error())
		}
		for _, fld := range cause.Fields {
			failure.Fprintf(cli.out, "%s: %s\n", fld.Field, fld.Error)
		}
	default:
		failure.Fprintf(cli.out, "error: %s\n", err)
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}

// confirm asks a y/N question; anything but y or yes is a no.
func (cli *commandLine) confirm(question string) bool {
	fmt.Fprintf(cli.out, "%s [y/N]: ", question)
	answer, _ := cli.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (cli *commandLine) session() (*session.Session, error) {
	sess, err := cli.sessions.Load()
	if err != nil {
		if errors.Cause(err) == session.ErrNoSession {
			return nil, errNotLoggedIn
		}
		return nil, err
	}
	return sess, nil
}
