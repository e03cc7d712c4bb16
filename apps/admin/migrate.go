package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/sunrise/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errNoSQL = errors.New("migrations need the postgres engine")
)

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command over the embedded migrations",
		Long: `Run a goose command over the embedded migrations:
up, up-by-one, up-to VERSION, down, down-to VERSION, redo, reset, status, version, fix.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errHelp
			}
			return cli.migrate(cmd, args)
		},
	}
}

func (cli *commandLine) migrate(cmd *cobra.Command, args []string) error {
	if cli.db == nil {
		return errNoSQL
	}
	if err := gooseRunFunc(cmd.Context(), cli.db, args[0], args[1:]...); err != nil {
		return err
	}
	success.Fprintf(cli.out, "migrate %s: done\n", args[0])
	return nil
}
