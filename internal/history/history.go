// Package history manages the list of past transactions shown in the
// sidebar: fetching, month/year filtering, inline rename, confirmed delete
// and per-row dropdown menus. The list only changes after the server
// confirms a mutation.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/equipeadalove/aduana/internal/api"
	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/notify"
)

// Errors returned by list operations.
var (
	ErrNotFound   = errors.New("transaction not in history")
	ErrNoRename   = errors.New("no rename in progress")
	ErrNoDeletion = errors.New("no deletion pending")
)

// Backend is the part of the API the history list calls.
type Backend interface {
	Transactions(ctx context.Context) ([]model.TransactionSummary, error)
	RenameTransaction(ctx context.Context, id int64, name string) (*model.TransactionSummary, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// Filter selects transactions by creation month and year. Zero fields are
// unset.
type Filter struct {
	Month time.Month
	Year  int
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f.Month == 0 && f.Year == 0
}

// Match reports whether t passes the filter.
func (f Filter) Match(t time.Time) bool {
	if f.Month != 0 && t.Month() != f.Month {
		return false
	}
	if f.Year != 0 && t.Year() != f.Year {
		return false
	}
	return true
}

// List is the history state. Safe for concurrent use.
type List struct {
	backend       Backend
	notifier      notify.Notifier
	items         []model.TransactionSummary
	draft         string
	filter        Filter
	renaming      int64
	pendingDelete int64
	openMenu      int64
	loading       bool
	mu            sync.Mutex
}

// New creates an empty list.
func New(backend Backend, notifier notify.Notifier) *List {
	return &List{backend: backend, notifier: notifier}
}

// Load fetches all transactions, newest first.
func (l *List) Load(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	items, err := l.backend.Transactions(ctx)

	l.mu.Lock()
	l.loading = false
	if err == nil {
		sortNewestFirst(items)
		l.items = items
	}
	l.mu.Unlock()

	if err != nil {
		l.report(err, "Could not load history.")
		return fmt.Errorf("failed to load history: %w", err)
	}
	slog.Debug("History loaded", "count", len(items))
	return nil
}

// Loading reports whether a fetch is in progress.
func (l *List) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Items returns all transactions, newest first.
func (l *List) Items() []model.TransactionSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.TransactionSummary(nil), l.items...)
}

// SetFilter replaces the filter.
func (l *List) SetFilter(f Filter) {
	l.mu.Lock()
	l.filter = f
	l.mu.Unlock()
}

// Filter returns the active filter.
func (l *List) Filter() Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Visible returns the transactions passing the filter, in list order.
func (l *List) Visible() []model.TransactionSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Apply(l.items, l.filter)
}

// Apply filters items by f. With no filter set the input is returned as a
// copy in the same order.
func Apply(items []model.TransactionSummary, f Filter) []model.TransactionSummary {
	out := make([]model.TransactionSummary, 0, len(items))
	for _, t := range items {
		if f.Match(t.CreatedAt.Time) {
			out = append(out, t)
		}
	}
	return out
}

// Years returns the distinct creation years, most recent first, for the
// year selector.
func (l *List) Years() []int {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[int]bool)
	var years []int
	for _, t := range l.items {
		y := t.CreatedAt.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// BeginRename swaps the row into edit mode with its current name.
func (l *List) BeginRename(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.find(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	l.renaming = id
	l.draft = t.DisplayName()
	l.openMenu = 0
	return nil
}

// Renaming returns the id being renamed, or 0.
func (l *List) Renaming() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.renaming
}

// SetDraft updates the name being typed.
func (l *List) SetDraft(name string) {
	l.mu.Lock()
	l.draft = name
	l.mu.Unlock()
}

// Draft returns the name being typed.
func (l *List) Draft() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.draft
}

// CancelRename leaves edit mode without a request.
func (l *List) CancelRename() {
	l.mu.Lock()
	l.renaming = 0
	l.draft = ""
	l.mu.Unlock()
}

// CommitRename sends the draft. An empty or whitespace-only name is
// rejected without a request and keeps the row in edit mode.
func (l *List) CommitRename(ctx context.Context) error {
	l.mu.Lock()
	id, name := l.renaming, strings.TrimSpace(l.draft)
	l.mu.Unlock()

	if id == 0 {
		return ErrNoRename
	}
	if name == "" {
		const msg = "The name cannot be empty."
		notify.Error(l.notifier, msg)
		return common.Invalid(msg)
	}

	updated, err := l.backend.RenameTransaction(ctx, id, name)
	if err != nil {
		l.report(err, "Could not rename the process.")
		return fmt.Errorf("failed to rename transaction %d: %w", id, err)
	}

	l.mu.Lock()
	for i := range l.items {
		if l.items[i].ID != id {
			continue
		}
		if updated != nil {
			l.items[i] = *updated
		} else {
			l.items[i].Name = &name
		}
	}
	if l.renaming == id {
		l.renaming = 0
		l.draft = ""
	}
	l.mu.Unlock()

	notify.Success(l.notifier, "Process renamed!")
	return nil
}

// RequestDelete asks for confirmation before deleting id.
func (l *List) RequestDelete(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.find(id); !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	l.pendingDelete = id
	l.openMenu = 0
	return nil
}

// PendingDelete returns the id awaiting confirmation, or 0.
func (l *List) PendingDelete() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingDelete
}

// CancelDelete dismisses the confirmation.
func (l *List) CancelDelete() {
	l.mu.Lock()
	l.pendingDelete = 0
	l.mu.Unlock()
}

// ConfirmDelete deletes the pending transaction and removes it from the
// list once the server confirms.
func (l *List) ConfirmDelete(ctx context.Context) error {
	l.mu.Lock()
	id := l.pendingDelete
	l.pendingDelete = 0
	l.mu.Unlock()

	if id == 0 {
		return ErrNoDeletion
	}

	if err := l.backend.DeleteTransaction(ctx, id); err != nil {
		l.report(err, "Could not delete the process.")
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}

	l.mu.Lock()
	kept := l.items[:0]
	for _, t := range l.items {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	l.items = kept
	if l.renaming == id {
		l.renaming = 0
		l.draft = ""
	}
	l.mu.Unlock()

	notify.Success(l.notifier, "Process deleted.")
	return nil
}

// ToggleMenu opens the dropdown of id, closing any other, or closes it when
// already open.
func (l *List) ToggleMenu(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.openMenu == id {
		l.openMenu = 0
		return
	}
	l.openMenu = id
}

// OpenMenu returns the row whose dropdown is open, or 0.
func (l *List) OpenMenu() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.openMenu
}

// HandleClick closes the open dropdown unless the click landed inside it.
// target is the row whose menu received the click, or 0 for anywhere else.
func (l *List) HandleClick(target int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.openMenu != 0 && target != l.openMenu {
		l.openMenu = 0
	}
}

// Must hold l.mu.
func (l *List) find(id int64) (model.TransactionSummary, bool) {
	for _, t := range l.items {
		if t.ID == id {
			return t, true
		}
	}
	return model.TransactionSummary{}, false
}

func (l *List) report(err error, fallback string) {
	if errors.Is(err, api.ErrUnauthorized) {
		return
	}
	notify.Error(l.notifier, api.Message(err, fallback))
}

func sortNewestFirst(items []model.TransactionSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].CreatedAt.Time, items[j].CreatedAt.Time
		if !a.Equal(b) {
			return a.After(b)
		}
		return items[i].ID > items[j].ID
	})
}
