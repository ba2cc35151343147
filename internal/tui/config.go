package tui

import (
	"context"

	"github.com/equipeadalove/aduana/internal/history"
	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/notify"
	"github.com/equipeadalove/aduana/internal/service"
	"github.com/equipeadalove/aduana/internal/session"
	"github.com/equipeadalove/aduana/internal/tui/themes"
	"github.com/equipeadalove/aduana/internal/workflow"
)

// Config wires the application state into the TUI. The machine and the
// history list must report to Notices, and the session and machine must
// navigate through Router.
type Config struct {
	Context  context.Context
	Session  *session.Session
	Router   *nav.Router
	Account  *service.Account
	Machine  *workflow.Machine
	History  *history.List
	Notices  *notify.Queue
	Recorder *Recorder
	Theme    themes.Theme
	Width    int
	Height   int
	// Transaction opens a saved transaction at start when non-zero.
	Transaction int64
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// WithTheme sets the initial theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithTransaction opens a saved transaction at start.
func WithTransaction(id int64) Option {
	return func(c *Config) {
		c.Transaction = id
	}
}

// WithRecorder captures every frame for debugging.
func WithRecorder(r *Recorder) Option {
	return func(c *Config) {
		c.Recorder = r
	}
}

func (c *Config) apply(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.Context == nil {
		c.Context = context.Background()
	}
	if c.Theme.Name == "" {
		c.Theme = themes.Dark
	}
	if c.Width == 0 {
		c.Width = 100
	}
	if c.Height == 0 {
		c.Height = 30
	}
}
