package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kersh1337228/goorm/orm"
)

var queryCmd = &cobra.Command{
	Use:   "query <model> <SELECT ...>",
	Short: "Run a whitelisted read-only SELECT against a registered model",
	Long: `Run a raw SELECT statement, validated against a whitelist (single
statement, no DDL/DML keywords, no semicolons), hydrating each row as an
instance of the given model.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := orm.Lookup(args[0])
		if err != nil {
			return err
		}

		rows, err := db.Raw(cmd.Context(), model, args[1])
		if err != nil {
			return err
		}

		cols := model.ScalarColumns()
		out := cmd.OutOrStdout()
		for _, row := range rows {
			parts := make([]string, len(cols))
			for i, col := range cols {
				v, err := row.Get(col)
				if err != nil {
					return err
				}
				parts[i] = fmt.Sprintf("%s=%v", col, v)
			}
			fmt.Fprintln(out, strings.Join(parts, " "))
		}
		fmt.Fprintf(out, "%d row(s)\n", len(rows))
		return nil
	},
}
