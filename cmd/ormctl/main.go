// Command ormctl is the operator-facing CLI for the ORM: schema
// bootstrap (migrate) and ad-hoc read queries (query) against whatever
// models the running binary has registered.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
