package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/workflow"
)

// Run shows the terminal UI until the user quits or ctx is canceled.
func Run(ctx context.Context, cfg Config, opts ...Option) error {
	if cfg.Session == nil || cfg.Router == nil || cfg.Account == nil ||
		cfg.Machine == nil || cfg.History == nil || cfg.Notices == nil {
		return fmt.Errorf("%w: terminal UI needs session, router, account, workflow, history and notices", common.ErrMissingConfig)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	cfg.Context = ctx
	m := New(cfg, opts...)
	defer m.cfg.Machine.Close()
	if m.cfg.Recorder != nil {
		defer m.cfg.Recorder.Close()
	}

	initial := nav.To(nav.Main)
	if m.cfg.Transaction > 0 {
		initial = nav.Transaction(m.cfg.Transaction)
	}
	m.cfg.Router.Navigate(initial)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Listeners fire inside Update too, so never block on Send there.
	poke := func() { go p.Send(refreshMsg{}) }
	unsubscribe := []func(){
		m.cfg.Machine.Subscribe(func(workflow.Snapshot) { poke() }),
		m.cfg.Router.Subscribe(func(nav.Route) { poke() }),
		m.cfg.Session.Subscribe(func(bool) { poke() }),
	}
	defer func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}()

	slog.Info("Starting terminal UI", "route", initial.Path(), "theme", m.cfg.Theme.Name)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal UI error: %w", err)
	}
	return nil
}
