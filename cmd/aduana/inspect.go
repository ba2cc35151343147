package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/equipeadalove/aduana/internal/cli"
	"github.com/equipeadalove/aduana/internal/sheets"
)

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.xlsx>",
		Short: "Summarize a downloaded spreadsheet",
		Long: `Show the worksheets of an exported spreadsheet with a preview of their
rows, and the classified items found in it. Works offline.`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}
	cmd.Flags().IntP("rows", "n", 5, "preview rows per sheet")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	rows, _ := cmd.Flags().GetInt("rows")
	if rows < 0 {
		return fmt.Errorf("invalid row count %d", rows)
	}

	wb, err := sheets.InspectFile(args[0], rows)
	if err != nil && !errors.Is(err, sheets.ErrNoItemHeader) {
		return err
	}

	for _, sheet := range wb.Sheets {
		printLine(cmd, cli.FormatTitle(fmt.Sprintf("%s (%d rows)", sheet.Name, sheet.Rows)))
		if len(sheet.Header) > 0 {
			printLine(cmd, cli.RenderTable(sheet.Header, sheet.Preview))
		}
		printLine(cmd)
	}

	if len(wb.Items) == 0 {
		printLine(cmd, cli.FormatWarning("No classified items found."))
		return nil
	}
	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("%d classified items", len(wb.Items))))
	printLine(cmd, cli.RenderProcessed(wb.Items))
	return nil
}
