package main

import (
	"fmt"
	"os"

	"github.com/andy/invoicedesk/internal/cli"
)

func main() {
	// The app is built lazily by the root command so --config and
	// --help are honoured before anything touches the config file.
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
