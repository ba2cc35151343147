package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/equipeadalove/aduana/internal/cli"
	"github.com/equipeadalove/aduana/internal/document"
	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/notify"
	"github.com/equipeadalove/aduana/internal/sheets"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <file.pdf>",
		Short: "Extract, classify and export an invoice in one go",
		Long: `Upload an invoice PDF, classify its items and download the customs
spreadsheet as <name>_classificado.xlsx.

With --review every extracted item is shown for correction before
classification, and every classified item before export. Press Enter to
keep a value.

Examples:
  aduana classify invoice.pdf
  aduana classify invoice.pdf --review
  aduana classify invoice.pdf --out ~/Downloads`,
		Args: cobra.ExactArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().BoolP("review", "r", false, "review items before classifying and before exporting")
	cmd.Flags().StringP("out", "o", "", "directory for the spreadsheet (default: downloads.dir)")
	cmd.Flags().Bool("no-verify", false, "skip reading back the downloaded spreadsheet")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	review, _ := cmd.Flags().GetBool("review")
	noVerify, _ := cmd.Flags().GetBool("no-verify")
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		viper.Set("downloads.dir", out)
	}
	w := cmd.OutOrStdout()

	doc, err := document.Open(args[0])
	if err != nil {
		return userError(err, "Could not open the file.")
	}

	handler := cli.NewInterruptHandler(w)
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	a, err := openApp(ctx, problemsOnly(w))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireLogin(); err != nil {
		return err
	}

	printLine(cmd, cli.FormatTitle(fmt.Sprintf("%s (%s, %s)", doc.Name, pages(doc.Pages), document.FormatSize(doc.Size))))
	if err := a.machine.SelectFile(doc); err != nil {
		return userError(err, "Could not select the file.")
	}

	p := newPrompter(cmd)
	run := pipeline{ctx: ctx, app: a, prompter: p, handler: handler, out: w, review: review}
	err = run.execute()
	if handler.WasInterrupted() {
		return nil
	}
	if err != nil {
		return err
	}

	snap := a.machine.Snapshot()
	printLine(cmd, cli.FormatSuccess(snap.SaveMessage))
	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("%s Spreadsheet saved to %s", cli.SheetIcon, snap.DownloadPath)))

	if !noVerify {
		verifyDownload(cmd, snap.DownloadPath, snap.Processed)
	}
	return nil
}

// pipeline runs the workflow steps from a selected file to a download.
type pipeline struct {
	ctx      context.Context
	app      *app
	prompter *cli.Prompter
	handler  *cli.InterruptHandler
	out      io.Writer
	review   bool
}

func (r pipeline) execute() error {
	machine := r.app.machine
	if !r.review {
		r.prompter.StartProgress(3, "Extracting")
		defer r.prompter.FinishProgress()
	}

	if err := machine.Extract(r.ctx); err != nil {
		return userError(err, "Error extracting data from the PDF.")
	}
	snap := machine.Snapshot()
	r.handler.SetResumeHint(fmt.Sprintf("aduana ui --transaction %d", snap.TransactionID))
	r.step("Classifying")

	if r.review {
		fmt.Fprintln(r.out, cli.RenderExtracted(snap.Extracted))
		if err := r.prompter.ReviewExtracted(r.ctx, snap.Extracted, machine.EditExtracted); err != nil {
			return r.reviewError(err)
		}
	}

	if err := machine.Process(r.ctx); err != nil {
		return userError(err, "Error processing the items.")
	}
	snap = machine.Snapshot()
	r.step("Exporting")

	if r.review {
		fmt.Fprintln(r.out, cli.RenderProcessed(snap.Processed))
		if err := r.prompter.ReviewProcessed(r.ctx, snap.Processed, machine.EditProcessed); err != nil {
			return r.reviewError(err)
		}
	}

	if err := machine.Finalize(r.ctx); err != nil {
		return userError(err, "Error generating the Excel file.")
	}
	r.step("Done")
	return nil
}

func (r pipeline) step(description string) {
	if r.review {
		fmt.Fprintln(r.out, cli.FormatInfo(description+"..."))
		return
	}
	r.prompter.Step(description)
}

// reviewError keeps the saved transaction reachable when a review stops
// early.
func (r pipeline) reviewError(err error) error {
	if errors.Is(err, io.EOF) {
		err = errors.New("input ended during review")
	}
	id := r.app.machine.Snapshot().TransactionID
	return fmt.Errorf("%w; resume with 'aduana ui --transaction %d'", err, id)
}

// verifyDownload reads the spreadsheet back and warns about rows that
// differ from the exported items.
func verifyDownload(cmd *cobra.Command, path string, items []model.ProcessedItem) {
	wb, err := sheets.InspectFile(path, 0)
	if errors.Is(err, sheets.ErrNoItemHeader) {
		return
	}
	if err != nil {
		printLine(cmd, cli.FormatWarning("Could not read the spreadsheet back: "+err.Error()))
		return
	}
	mismatches := sheets.Compare(items, wb.Items)
	if len(mismatches) == 0 {
		printLine(cmd, cli.SubtleStyle.Render(fmt.Sprintf("Verified %d rows.", len(wb.Items))))
		return
	}
	printLine(cmd, cli.FormatWarning(fmt.Sprintf("The spreadsheet differs from the reviewed items in %d places:", len(mismatches))))
	for _, m := range mismatches {
		printLine(cmd, "  "+m.String())
	}
}

// problemsOnly prints warnings and errors; progress is shown separately.
func problemsOnly(w io.Writer) notify.Notifier {
	printer := cli.Notifier{W: w}
	return notify.Func(func(n notify.Notice) {
		if n.Level == notify.LevelWarning || n.Level == notify.LevelError {
			printer.Notify(n)
		}
	})
}

func pages(n int) string {
	switch n {
	case 0:
		return "? pages"
	case 1:
		return "1 page"
	default:
		return fmt.Sprintf("%d pages", n)
	}
}
