package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/equipeadalove/aduana/internal/cli"
	"github.com/equipeadalove/aduana/internal/history"
	"github.com/equipeadalove/aduana/internal/model"
)

const dateLayout = "02/01/2006 15:04"

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "Browse, rename and delete past processes",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	cmd.AddCommand(historyRenameCmd())
	cmd.AddCommand(historyDeleteCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past processes, newest first",
		Long: `List past processes, newest first. Use --month and --year to show only
processes created in that month and/or year.

Examples:
  aduana history list
  aduana history list --year 2024
  aduana history list --month 3 --year 2024`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}
	cmd.Flags().IntP("month", "m", 0, "creation month (1-12)")
	cmd.Flags().IntP("year", "y", 0, "creation year")
	return cmd
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	month, _ := cmd.Flags().GetInt("month")
	year, _ := cmd.Flags().GetInt("year")
	filter, err := parseFilter(month, year)
	if err != nil {
		return err
	}

	a, err := openCommandApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.history.Load(cmd.Context()); err != nil {
		return userError(err, "Could not load history.")
	}
	a.history.SetFilter(filter)

	items := a.history.Visible()
	if len(items) == 0 {
		if filter.IsZero() {
			printLine(cmd, cli.InfoStyle.Render("No processes yet. Run 'aduana classify <file.pdf>' to start one."))
		} else {
			printLine(cmd, cli.InfoStyle.Render("No processes match the filter."))
		}
		return nil
	}

	printLine(cmd, cli.FormatTitle("History"))
	printLine(cmd, renderHistory(items))
	return nil
}

func parseFilter(month, year int) (history.Filter, error) {
	if month < 0 || month > 12 {
		return history.Filter{}, fmt.Errorf("invalid month %d (want 1-12)", month)
	}
	if year < 0 {
		return history.Filter{}, fmt.Errorf("invalid year %d", year)
	}
	return history.Filter{Month: time.Month(month), Year: year}, nil
}

func renderHistory(items []model.TransactionSummary) string {
	rows := make([][]string, len(items))
	for i, t := range items {
		rows[i] = []string{strconv.FormatInt(t.ID, 10), t.Title(), t.CreatedAt.Format(dateLayout)}
	}
	return cli.RenderTable([]string{"ID", "Name", "Created"}, rows)
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the items of a saved process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			a, err := openCommandApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireLogin(); err != nil {
				return err
			}
			detail, err := a.client.GetTransaction(cmd.Context(), id)
			if err != nil {
				return userError(err, "Could not load the transaction.")
			}
			printLine(cmd, renderDetail(detail))
			return nil
		},
	}
}

// renderDetail shows processed items when present, else the pending
// extracted items.
func renderDetail(d model.TransactionDetail) string {
	title := fmt.Sprintf("Transaction #%d", d.ID)
	switch {
	case len(d.ProcessedItems) > 0:
		return cli.FormatTitle(title+" · classified") + "\n" + cli.RenderProcessed(d.ProcessedItems)
	case len(d.PendingItems) > 0:
		return cli.FormatTitle(title+" · pending classification") + "\n" + cli.RenderExtracted(d.PendingItems)
	default:
		return cli.FormatWarning(title + " has no saved items.")
	}
}

func historyRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a saved process",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			name := strings.Join(args[1:], " ")

			a, err := openCommandApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := a.history.Load(ctx); err != nil {
				return userError(err, "Could not load history.")
			}
			if err := a.history.BeginRename(id); err != nil {
				return err
			}
			a.history.SetDraft(name)
			// Failures were already printed as notices.
			if err := a.history.CommitRename(ctx); err != nil {
				return fmt.Errorf("rename failed: %w", err)
			}
			return nil
		},
	}
}

func historyDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved process",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDelete,
	}
	cmd.Flags().BoolP("force", "f", false, "skip the confirmation prompt")
	return cmd
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	a, err := openCommandApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireLogin(); err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := a.history.Load(ctx); err != nil {
		return userError(err, "Could not load history.")
	}
	if err := a.history.RequestDelete(id); err != nil {
		return err
	}

	if !force {
		ok, err := newPrompter(cmd).Confirm(ctx, fmt.Sprintf("Delete process #%d?", id), false)
		if err != nil {
			a.history.CancelDelete()
			return err
		}
		if !ok {
			a.history.CancelDelete()
			printLine(cmd, cli.SubtleStyle.Render("Delete canceled."))
			return nil
		}
	}

	if err := a.history.ConfirmDelete(ctx); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}
