package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/equipeadalove/aduana/internal/api"
	"github.com/equipeadalove/aduana/internal/cli"
	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/config"
	"github.com/equipeadalove/aduana/internal/history"
	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/notify"
	"github.com/equipeadalove/aduana/internal/service"
	"github.com/equipeadalove/aduana/internal/session"
	"github.com/equipeadalove/aduana/internal/storage"
	"github.com/equipeadalove/aduana/internal/workflow"
)

// app holds the services shared by every command.
type app struct {
	cfg     *config.Config
	store   *storage.SQLiteStorage
	router  *nav.Router
	session *session.Session
	client  *api.Client
	account *service.Account
	machine *workflow.Machine
	history *history.List
}

// openApp loads the configuration and the persisted session and wires the
// API client, account service, workflow and history list. Notices go to
// notifier.
func openApp(ctx context.Context, notifier notify.Notifier) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	router := nav.NewRouter(nil)
	sess := session.New(store, router)
	router.SetAuth(sess)
	if err := sess.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	requester, err := api.NewRequester(api.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Breaker: api.BreakerSettings{
			Enabled:      cfg.Breaker.Enabled,
			MinRequests:  cfg.Breaker.MinRequests,
			FailureRatio: cfg.Breaker.FailureRatio,
			OpenTimeout:  cfg.Breaker.OpenTimeout,
		},
	}, sess)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	client := api.NewClient(requester)

	return &app{
		cfg:     cfg,
		store:   store,
		router:  router,
		session: sess,
		client:  client,
		account: service.NewAccount(client, sess),
		machine: workflow.New(client, workflow.DirSink{Dir: cfg.DownloadDir}, notifier, router),
		history: history.New(client, notifier),
	}, nil
}

func (a *app) Close() {
	a.machine.Close()
	if err := a.store.Close(); err != nil {
		slog.Error("Failed to close storage", "error", err)
	}
}

// requireLogin fails when no session is stored.
func (a *app) requireLogin() error {
	if !a.session.IsAuthenticated() {
		return errors.New("not logged in: run 'aduana login' first")
	}
	return nil
}

// openCommandApp opens the app with notices printed to the command output.
func openCommandApp(cmd *cobra.Command) (*app, error) {
	return openApp(cmd.Context(), cli.Notifier{W: cmd.OutOrStdout()})
}

func newPrompter(cmd *cobra.Command) *cli.Prompter {
	return cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
}

// userError returns the message a user should see for err.
func userError(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return errors.New(api.Message(err, fallback))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transaction id %q", arg)
	}
	return id, nil
}

func printLine(cmd *cobra.Command, a ...any) {
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), a...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}
