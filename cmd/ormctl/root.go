package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kersh1337228/goorm/examples/airline"
	"github.com/kersh1337228/goorm/internal/orm/dbconn"
	"github.com/kersh1337228/goorm/orm"
)

var (
	cfgFile string
	db      *orm.DB
)

var rootCmd = &cobra.Command{
	Use:   "ormctl",
	Short: "Operate the ORM's schema and run read queries",
	Long: `ormctl bootstraps a database's schema from the models registered in
the running binary and lets an operator run whitelisted read-only SQL
against it.

Connection settings come from the environment (GOORM_DB_HOST, GOORM_DB_PORT,
GOORM_DB_USER, GOORM_DB_PASSWORD, GOORM_DB_NAME, GOORM_DB_TLS) and, if
given, a TOML overlay file via --config.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := airline.Register(); err != nil {
			return fmt.Errorf("ormctl: registering fixture models: %w", err)
		}

		cfg, err := dbconn.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("ormctl: loading config: %w", err)
		}

		handle, err := orm.Connect(cmd.Context(), dbconn.MySQLConnector{}, cfg)
		if err != nil {
			return fmt.Errorf("ormctl: connecting: %w", err)
		}
		db = handle
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a TOML config overlay (optional)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(queryCmd)
}
