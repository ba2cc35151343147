package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/equipeadalove/aduana/internal/config"
	"github.com/equipeadalove/aduana/internal/notify"
	"github.com/equipeadalove/aduana/internal/tui"
	"github.com/equipeadalove/aduana/internal/tui/themes"
)

func uiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive interface",
		Long: `Open the full-screen interface: log in, upload a PDF, correct the
extracted items, validate the classification and download the spreadsheet.
The history sidebar lists past processes (Ctrl+E to focus it).

Examples:
  aduana ui
  aduana ui --transaction 42   # reopen a saved process
  aduana ui --theme light`,
		Args: cobra.NoArgs,
		RunE: runUI,
	}

	cmd.Flags().Int64P("transaction", "t", 0, "open a saved process by id")
	cmd.Flags().String("theme", "", "initial theme (dark, light)")
	cmd.Flags().Bool("record", false, "record every frame for debugging")
	cmd.Flags().String("record-dir", "", "directory for recorded frames (default: a temp dir)")

	_ = viper.BindPFlag("ui.theme", cmd.Flags().Lookup("theme"))

	return cmd
}

func runUI(cmd *cobra.Command, _ []string) error {
	transaction, _ := cmd.Flags().GetInt64("transaction")
	record, _ := cmd.Flags().GetBool("record")
	recordDir, _ := cmd.Flags().GetString("record-dir")
	if transaction < 0 {
		return fmt.Errorf("invalid transaction id %d", transaction)
	}

	// Log lines would tear the alternate screen.
	restore, err := redirectLogs(config.ExpandPath(viper.GetString("logging.file")))
	if err != nil {
		return err
	}
	defer restore()

	notices := &notify.Queue{}
	a, err := openApp(cmd.Context(), notices)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := []tui.Option{tui.WithTheme(themes.GetTheme(a.cfg.Theme))}
	if transaction > 0 {
		opts = append(opts, tui.WithTransaction(transaction))
	}
	if record {
		recorder := tui.NewRecorder(true, recordDir)
		opts = append(opts, tui.WithRecorder(recorder))
		defer func() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Recorded %d frames in %s\n", recorder.Frames(), recorder.Dir())
		}()
	}

	return tui.Run(cmd.Context(), tui.Config{
		Session: a.session,
		Router:  a.router,
		Account: a.account,
		Machine: a.machine,
		History: a.history,
		Notices: notices,
	}, opts...)
}

// redirectLogs sends the default logger to path, or discards it when path
// is empty, and returns a function restoring stderr logging.
func redirectLogs(path string) (func(), error) {
	previous := slog.Default()
	var (
		w        io.Writer = io.Discard
		closeLog           = func() {}
	)

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeLog = func() { _ = f.Close() }
	}

	if err := setupLogging(w); err != nil {
		closeLog()
		return nil, err
	}
	return func() {
		slog.SetDefault(previous)
		closeLog()
	}, nil
}
