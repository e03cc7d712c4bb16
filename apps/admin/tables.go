package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trezcool/sunrise/core/engine"
	"github.com/trezcool/sunrise/core/gate"
)

func (cli *commandLine) tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables your role may manage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cli.session()
			if err != nil {
				return err
			}
			heading.Fprintf(cli.out, "Tables for %s\n", sess.Role)
			for _, t := range gate.EnabledTables(sess.Role) {
				fmt.Fprintf(cli.out, "  %s\n", t)
			}
			return nil
		},
	}
}

type manageFlags struct {
	filter string
	sort   string
	dir    string
	page   int
	size   int
}

func (cli *commandLine) manageCmd() *cobra.Command {
	var f manageFlags

	cmd := &cobra.Command{
		Use:   "manage TABLE",
		Short: "Print one page of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cli.session()
			if err != nil {
				return err
			}
			v := engine.NewView(engine.Options{Store: cli.store, Registry: cli.reg, Users: cli.usrSvc}, sess)
			if err = v.SelectTable(args[0], ""); err != nil {
				return err
			}
			if err = v.Load(cmd.Context()); err != nil {
				return err
			}
			v.ApplyFilter(f.filter)
			dir := engine.SortDir(strings.ToLower(f.dir))
			if f.sort == "" {
				dir = engine.SortNone
			}
			if err = v.Sort(f.sort, dir); err != nil {
				return err
			}
			if err = v.Paginate(f.size, f.page-1); err != nil {
				return err
			}
			cli.printPage(v.Page())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.filter, "filter", "", "keep rows containing this text")
	cmd.Flags().StringVar(&f.sort, "sort", "", "column to sort on")
	cmd.Flags().StringVar(&f.dir, "dir", string(engine.SortAsc), "asc or desc")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number, from 1")
	cmd.Flags().IntVar(&f.size, "size", engine.DefaultPageSize, "rows per page: 5, 10, 20, 50 or 100")
	return cmd
}

func (cli *commandLine) printPage(p engine.Page) {
	heading.Fprintln(cli.out, strings.ToUpper(strings.ReplaceAll(p.Table, "_", " ")))

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	labels := []string{"#"}
	for _, c := range p.Columns {
		labels = append(labels, c.Label)
	}
	fmt.Fprintln(w, strings.Join(labels, "\t"))
	for _, r := range p.Rows {
		cells := []string{fmt.Sprint(r.Serial)}
		for _, c := range p.Columns {
			cells = append(cells, r.Cells[c.Field].Text)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()

	if p.Matched == 0 {
		warning.Fprintln(cli.out, "No records found")
	}
	fmt.Fprintf(cli.out, "page %d of %d, %d of %d rows\n", p.PageIndex+1, p.PageCount, p.Matched, p.Total)
}
