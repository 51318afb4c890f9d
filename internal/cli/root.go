package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	appInstance *app.App
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:   "invoicedesk",
	Short: "Manage invoices on a REST backend from the terminal",
	Long: `Invoicedesk creates, edits, lists and deletes invoices and their line items
against an invoices REST API.

By default, running invoicedesk without arguments launches the interactive TUI
(or prints the invoice list when stdout is not a terminal).
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appInstance != nil {
			return nil
		}
		a, err := app.New(context.Background(), configPath)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		appInstance = a
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return runList(cmd)
		}
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if appInstance != nil {
		_ = appInstance.Close()
	}
	return err
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/invoicedesk/config.yaml)")

	// Add all subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tuiCmd)
}
