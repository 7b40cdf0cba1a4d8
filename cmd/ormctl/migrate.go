package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kersh1337228/goorm/orm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [model]",
	Short: "Create tables for every registered model, or just one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 0 {
			if err := db.MigrateAll(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d model(s)\n", len(orm.AllModels()))
			return nil
		}

		model, err := orm.Lookup(args[0])
		if err != nil {
			return err
		}
		if err := db.Migrate(ctx, model); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", model.Name)
		return nil
	},
}
