package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/form"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd)
	},
}

func runList(cmd *cobra.Command) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()
	symbol := appInstance.Config.Display.CurrencySymbol

	invoices, err := appInstance.InvoiceService.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list invoices: %w", err)
	}

	if len(invoices) == 0 {
		fmt.Fprintln(out, "No invoices found")
		return nil
	}

	// Print table header
	fmt.Fprintf(out, "%-6s %-15s %-25s %-12s %5s %14s\n", "ID", "Number", "Customer", "Date", "Lines", "Total")
	fmt.Fprintln(out, strings.Repeat("-", 82))

	for _, inv := range invoices {
		b := domain.Breakdown(inv)
		fmt.Fprintf(out, "%-6d %-15s %-25s %-12s %5d %14s\n",
			inv.IDValue(),
			truncate(inv.InvoiceNumber, 15),
			truncate(inv.CustomerName, 25),
			inv.Date,
			len(inv.Details),
			domain.FormatMoney(b.Total, symbol),
		)
	}

	fmt.Fprintf(out, "\nTotal: %d invoice(s)\n", len(invoices))
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show an invoice and its line totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		inv, err := fetchInvoice(context.Background(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		symbol := appInstance.Config.Display.CurrencySymbol

		fmt.Fprintf(out, "Invoice %s (ID: %d)\n", inv.InvoiceNumber, inv.IDValue())
		fmt.Fprintf(out, "  Customer: %s\n", inv.CustomerName)
		fmt.Fprintf(out, "  Date:     %s\n\n", inv.Date)

		if len(inv.Details) == 0 {
			fmt.Fprintln(out, "  No line items")
			return nil
		}

		b := domain.Breakdown(inv)
		fmt.Fprintf(out, "  %-3s %-30s %10s %12s %12s\n", "#", "Description", "Quantity", "Unit Price", "Line Total")
		fmt.Fprintln(out, "  "+strings.Repeat("-", 71))
		for i, line := range b.Lines {
			fmt.Fprintf(out, "  %-3d %-30s %10s %12s %12s\n",
				i+1,
				truncate(line.Item.Description, 30),
				line.Item.Quantity,
				line.Item.UnitPrice,
				domain.FormatLineTotal(line.Item),
			)
		}
		fmt.Fprintln(out, "  "+strings.Repeat("-", 71))
		fmt.Fprintf(out, "  %58s %12s\n", "Total", domain.FormatMoney(b.Total, symbol))
		if b.Invalid > 0 {
			fmt.Fprintf(out, "  (%d line(s) with non-numeric values left out)\n", b.Invalid)
		}
		return nil
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice",
	Long: `Create an invoice. Line items are given as "description|quantity|unit price".

Example:
  invoicedesk create --number INV001 --customer "Raj Mallu" --date 2024-11-30 \
    --item "Consulting|3|120.00" --item "Travel|1|45.50"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := form.New()
		if err := applyHeaderFlags(cmd, f); err != nil {
			return err
		}
		items, _ := cmd.Flags().GetStringArray("item")
		if err := appendItems(f, items); err != nil {
			return err
		}

		return submit(cmd, f)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update an existing invoice",
	Long: `Update an existing invoice. Only the flags given are changed.
--drop-item takes the line number shown by 'show'; --item appends a line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		inv, err := fetchInvoice(context.Background(), id)
		if err != nil {
			return err
		}

		f := form.New()
		f.BeginEdit(inv)

		if err := applyHeaderFlags(cmd, f); err != nil {
			return err
		}

		if clearItems, _ := cmd.Flags().GetBool("clear-items"); clearItems {
			for f.LineCount() > 0 {
				if err := f.RemoveLineItem(f.LineCount() - 1); err != nil {
					return err
				}
			}
		}

		drops, _ := cmd.Flags().GetIntSlice("drop-item")
		// each line once, highest first so earlier removals do not shift later ones
		slices.Sort(drops)
		drops = slices.Compact(drops)
		slices.Reverse(drops)
		for _, n := range drops {
			if err := f.RemoveLineItem(n - 1); err != nil {
				return fmt.Errorf("cannot drop line %d: %w", n, err)
			}
		}

		items, _ := cmd.Flags().GetStringArray("item")
		if err := appendItems(f, items); err != nil {
			return err
		}

		return submit(cmd, f)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete invoice %d?", id)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}

		err = appInstance.InvoiceService.Remove(context.Background(), id)
		if err != nil && !errors.Is(err, service.ErrStaleCollection) {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Invoice %d deleted\n", id)
		return err
	},
}

// fetchInvoice refreshes the collection and looks id up in it
func fetchInvoice(ctx context.Context, id int64) (domain.Invoice, error) {
	if _, err := appInstance.InvoiceService.FetchAll(ctx); err != nil {
		return domain.Invoice{}, fmt.Errorf("failed to fetch invoices: %w", err)
	}
	inv, ok := appInstance.InvoiceService.Find(id)
	if !ok {
		return domain.Invoice{}, fmt.Errorf("invoice %d not found", id)
	}
	return inv, nil
}

// applyHeaderFlags copies changed --number/--customer/--date flags into the draft
func applyHeaderFlags(cmd *cobra.Command, f *form.Form) error {
	if cmd.Flags().Changed("number") {
		v, _ := cmd.Flags().GetString("number")
		if err := f.SetField(form.FieldInvoiceNumber, v); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("customer") {
		v, _ := cmd.Flags().GetString("customer")
		if err := f.SetField(form.FieldCustomerName, v); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("date") {
		raw, _ := cmd.Flags().GetString("date")
		date, err := parseDate(raw)
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
		if err := f.SetField(form.FieldDate, date); err != nil {
			return err
		}
	}
	return nil
}

// submit checks required inputs, then saves the draft through the service
func submit(cmd *cobra.Command, f *form.Form) error {
	if missing := f.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	draft := f.Draft()
	editing := f.Editing()

	err := appInstance.InvoiceService.Submit(context.Background(), f)
	if err != nil && !errors.Is(err, service.ErrStaleCollection) {
		return fmt.Errorf("failed to save invoice: %w", err)
	}

	out := cmd.OutOrStdout()
	if editing {
		fmt.Fprintf(out, "✓ Invoice updated: %s (ID: %d)\n", draft.InvoiceNumber, draft.IDValue())
	} else {
		fmt.Fprintf(out, "✓ Invoice created: %s\n", draft.InvoiceNumber)
	}
	b := domain.Breakdown(draft)
	fmt.Fprintf(out, "  Customer: %s\n", draft.CustomerName)
	fmt.Fprintf(out, "  Lines:    %d  Total: %s\n", len(draft.Details), domain.FormatMoney(b.Total, appInstance.Config.Display.CurrencySymbol))

	return err
}

func init() {
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().String("number", "", "Invoice number")
		c.Flags().String("customer", "", "Customer name")
		c.Flags().String("date", "", "Invoice date (YYYY-MM-DD, today, yesterday)")
		c.Flags().StringArray("item", nil, `Line item "description|quantity|unit price" (repeatable)`)
	}
	updateCmd.Flags().IntSlice("drop-item", nil, "Line number to remove (repeatable)")
	updateCmd.Flags().Bool("clear-items", false, "Remove all existing line items")

	deleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
}
