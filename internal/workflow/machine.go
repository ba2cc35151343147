// Package workflow drives the main view through upload, extraction,
// correction, processing, validation and export. The Machine owns the
// selected file, the transaction id and both item lists, and sequences the
// remote calls that move it between phases.
//
// Each remote call runs under a context owned by the machine. Overlapping
// actions are rejected with common.ErrBusy, Close aborts the call in flight,
// and a response arriving after its call was superseded is discarded.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/equipeadalove/aduana/internal/api"
	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/document"
	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/notify"
)

// Messages shown to the user.
const (
	SaveMessage = "Data saved successfully!"

	msgExtractFailed = "Error extracting data from the PDF."
	msgProcessFailed = "Error processing the items."
	msgSaveFailed    = "Error saving the data."
	msgExportFailed  = "Error generating the Excel file."
	msgLoadFailed    = "Could not load the transaction."
	msgEmptyLoad     = "This transaction has no saved items."
)

// Workflow errors.
var (
	ErrClosed           = errors.New("workflow closed")
	ErrEmptyTransaction = errors.New("transaction has no items")
)

// Backend is the part of the API the workflow calls.
type Backend interface {
	Extract(ctx context.Context, filename string, content io.Reader) (model.Extraction, error)
	Process(ctx context.Context, id int64, items []model.ExtractedItem) ([]model.ProcessedItem, error)
	Save(ctx context.Context, id int64, items []model.ProcessedItem) error
	Export(ctx context.Context, items []model.ProcessedItem) ([]byte, error)
	GetTransaction(ctx context.Context, id int64) (model.TransactionDetail, error)
}

// Snapshot is a copy of the machine state.
type Snapshot struct {
	File          *document.Document
	Extracted     []model.ExtractedItem
	Processed     []model.ProcessedItem
	SaveMessage   string
	Error         string
	DownloadPath  string
	TransactionID int64
	Phase         Phase
	// Restoring is set while a saved transaction is being fetched.
	Restoring bool
}

// IsLoading reports whether a workflow call is in flight.
func (s Snapshot) IsLoading() bool {
	return s.Phase.IsLoading()
}

// Busy reports whether any remote call, including a restore, is in flight.
func (s Snapshot) Busy() bool {
	return s.Phase.IsLoading() || s.Restoring
}

// DownloadName returns the spreadsheet name for the current upload, or for
// a transaction loaded by id.
func (s Snapshot) DownloadName() string {
	if s.File != nil {
		return s.File.DownloadName()
	}
	return document.DownloadName(fmt.Sprintf("transacao_%d", s.TransactionID))
}

func (s Snapshot) clone() Snapshot {
	out := s
	if s.Extracted != nil {
		out.Extracted = append([]model.ExtractedItem(nil), s.Extracted...)
	}
	if s.Processed != nil {
		out.Processed = append([]model.ProcessedItem(nil), s.Processed...)
	}
	return out
}

// Machine is the workflow state machine. Safe for concurrent use; actions
// block until their remote call completes.
type Machine struct {
	backend   Backend
	sink      Sink
	notifier  notify.Notifier
	navigator nav.Navigator
	cancel    context.CancelFunc
	listeners map[int]func(Snapshot)
	state     Snapshot
	gen       uint64
	nextID    int
	closed    bool
	mu        sync.Mutex
}

// New creates a machine in the initial phase. notifier and navigator may be
// nil.
func New(backend Backend, sink Sink, notifier notify.Notifier, navigator nav.Navigator) *Machine {
	return &Machine{
		backend:   backend,
		sink:      sink,
		notifier:  notifier,
		navigator: navigator,
		listeners: make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Subscribe registers fn for state changes and returns a function removing it.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// SelectFile starts over with doc: the transaction id and both lists are
// cleared, unsaved edits included.
func (m *Machine) SelectFile(doc *document.Document) error {
	if doc == nil {
		return common.ErrNoFile
	}
	return m.mutate(func(*effects) error {
		if err := m.idle(); err != nil {
			return err
		}
		slog.Info("File selected", "file", doc.Name, "pages", doc.Pages)
		m.state = Snapshot{File: doc}
		return nil
	})
}

// RemoveFile clears the selection and all state.
func (m *Machine) RemoveFile() error {
	return m.mutate(func(*effects) error {
		if err := m.idle(); err != nil {
			return err
		}
		m.state = Snapshot{}
		return nil
	})
}

// Extract uploads the selected file.
func (m *Machine) Extract(ctx context.Context) error {
	var (
		callCtx context.Context
		gen     uint64
		doc     *document.Document
	)
	err := m.mutate(func(*effects) error {
		if err := m.idle(); err != nil {
			return err
		}
		if m.state.File == nil {
			return common.ErrNoFile
		}
		if m.state.Phase != PhaseInitial {
			return invalidPhase("extract", m.state.Phase)
		}
		doc = m.state.File
		callCtx, gen = m.start(ctx, PhaseExtracting)
		return nil
	})
	if err != nil {
		return err
	}

	extraction, err := m.extract(callCtx, doc)

	return m.settle(gen, true, func(fx *effects) error {
		if err != nil {
			return m.fail(fx, PhaseInitial, err, msgExtractFailed)
		}
		m.state.Phase = PhaseExtracted
		m.state.TransactionID = extraction.TransactionID
		m.state.Extracted = nonNil(extraction.Items)
		m.state.Processed = nil
		fx.notify(notify.LevelSuccess, fmt.Sprintf("%d items extracted.", len(extraction.Items)))
		return nil
	})
}

func (m *Machine) extract(ctx context.Context, doc *document.Document) (model.Extraction, error) {
	rc, err := doc.Reader()
	if err != nil {
		return model.Extraction{}, common.NewUserError(fmt.Sprintf("Could not read %s.", doc.Name), err)
	}
	defer func() { _ = rc.Close() }()
	return m.backend.Extract(ctx, doc.Name, rc)
}

// Process sends the corrected items for classification.
func (m *Machine) Process(ctx context.Context) error {
	var (
		callCtx context.Context
		gen     uint64
		id      int64
		items   []model.ExtractedItem
	)
	err := m.mutate(func(*effects) error {
		if err := m.idle(); err != nil {
			return err
		}
		if m.state.Phase != PhaseExtracted {
			return invalidPhase("process", m.state.Phase)
		}
		if len(m.state.Extracted) == 0 {
			return common.Invalid("There are no items to process.")
		}
		id = m.state.TransactionID
		items = append([]model.ExtractedItem(nil), m.state.Extracted...)
		callCtx, gen = m.start(ctx, PhaseProcessing)
		return nil
	})
	if err != nil {
		return err
	}

	processed, err := m.backend.Process(callCtx, id, items)

	return m.settle(gen, true, func(fx *effects) error {
		if err != nil {
			return m.fail(fx, PhaseExtracted, err, msgProcessFailed)
		}
		m.state.Phase = PhaseProcessed
		m.state.Processed = nonNil(processed)
		fx.notify(notify.LevelSuccess, "Items processed.")
		return nil
	})
}

// Finalize saves the processed items and then exports them. A successful
// save is recorded even when the export that follows fails.
func (m *Machine) Finalize(ctx context.Context) error {
	var (
		callCtx context.Context
		gen     uint64
		id      int64
		name    string
		items   []model.ProcessedItem
	)
	err := m.mutate(func(*effects) error {
		if err := m.idle(); err != nil {
			return err
		}
		if m.state.Phase != PhaseProcessed {
			return invalidPhase("export", m.state.Phase)
		}
		if len(m.state.Processed) == 0 {
			return common.Invalid("There are no items to export.")
		}
		id = m.state.TransactionID
		name = m.state.DownloadName()
		items = append([]model.ProcessedItem(nil), m.state.Processed...)
		callCtx, gen = m.start(ctx, PhaseExporting)
		return nil
	})
	if err != nil {
		return err
	}

	if err := m.backend.Save(callCtx, id, items); err != nil {
		return m.settle(gen, true, func(fx *effects) error {
			return m.fail(fx, PhaseProcessed, err, msgSaveFailed)
		})
	}
	if err := m.settle(gen, false, func(*effects) error {
		m.state.SaveMessage = SaveMessage
		return nil
	}); err != nil {
		return err
	}

	path, err := m.export(callCtx, name, items)

	return m.settle(gen, true, func(fx *effects) error {
		if err != nil {
			return m.fail(fx, PhaseProcessed, err, msgExportFailed)
		}
		m.state.Phase = PhaseDownloaded
		m.state.DownloadPath = path
		fx.notify(notify.LevelSuccess, "Spreadsheet saved to "+path)
		return nil
	})
}

func (m *Machine) export(ctx context.Context, name string, items []model.ProcessedItem) (string, error) {
	data, err := m.backend.Export(ctx, items)
	if err != nil {
		return "", err
	}
	path, err := m.sink.Write(name, data)
	if err != nil {
		return "", common.NewUserError(fmt.Sprintf("Could not write %s.", name), err)
	}
	return path, nil
}

// ViewData returns from the download confirmation to the validation view.
func (m *Machine) ViewData() error {
	return m.mutate(func(*effects) error {
		if m.state.Phase != PhaseDownloaded {
			return invalidPhase("view data", m.state.Phase)
		}
		m.state.Phase = PhaseProcessed
		return nil
	})
}

// StartNew clears everything and leaves any transaction-scoped route.
func (m *Machine) StartNew() error {
	return m.mutate(func(fx *effects) error {
		if m.state.Phase != PhaseProcessed && m.state.Phase != PhaseDownloaded {
			return invalidPhase("start over", m.state.Phase)
		}
		m.state = Snapshot{}
		fx.navigate(nav.To(nav.Main))
		return nil
	})
}

// Reset aborts any call in flight and clears all state without navigating.
func (m *Machine) Reset() {
	_ = m.mutate(func(*effects) error {
		m.release()
		m.gen++
		m.state = Snapshot{}
		return nil
	})
}

// Load restores a saved transaction. Processed items win over pending ones;
// a transaction with neither, or a failed fetch, returns to an empty upload
// on the unscoped main route. Load supersedes any call in flight.
func (m *Machine) Load(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid transaction id %d", common.ErrValidation, id)
	}

	var (
		callCtx context.Context
		gen     uint64
	)
	err := m.mutate(func(*effects) error {
		if m.closed {
			return ErrClosed
		}
		m.release()
		m.state = Snapshot{Restoring: true}
		callCtx, gen = m.start(ctx, PhaseInitial)
		return nil
	})
	if err != nil {
		return err
	}

	detail, err := m.backend.GetTransaction(callCtx, id)

	return m.settle(gen, true, func(fx *effects) error {
		m.state.Restoring = false
		if err != nil {
			failErr := m.fail(fx, PhaseInitial, err, msgLoadFailed)
			if !errors.Is(err, api.ErrUnauthorized) {
				fx.navigate(nav.To(nav.Main))
			}
			return failErr
		}

		switch {
		case len(detail.ProcessedItems) > 0:
			m.state.Phase = PhaseProcessed
			m.state.Processed = append([]model.ProcessedItem(nil), detail.ProcessedItems...)
		case len(detail.PendingItems) > 0:
			m.state.Phase = PhaseExtracted
			m.state.Extracted = append([]model.ExtractedItem(nil), detail.PendingItems...)
		default:
			m.state.Error = msgEmptyLoad
			fx.notify(notify.LevelError, msgEmptyLoad)
			fx.navigate(nav.To(nav.Main))
			return ErrEmptyTransaction
		}
		m.state.TransactionID = id
		slog.Info("Transaction loaded", "transaction_id", id, "phase", m.state.Phase.String())
		return nil
	})
}

// EditExtracted changes one field of an extracted item.
func (m *Machine) EditExtracted(index int, field model.ExtractedField, value string) error {
	return m.mutate(func(*effects) error {
		if m.state.Phase != PhaseExtracted {
			return invalidPhase("edit extracted items", m.state.Phase)
		}
		if index < 0 || index >= len(m.state.Extracted) {
			return fmt.Errorf("%w: %d", common.ErrOutOfRange, index)
		}
		updated, err := m.state.Extracted[index].With(field, value)
		if err != nil {
			return err
		}
		m.state.Extracted[index] = updated
		m.state.SaveMessage = ""
		return nil
	})
}

// EditProcessed changes one editable field of a processed item.
func (m *Machine) EditProcessed(index int, field model.ProcessedField, value string) error {
	return m.mutate(func(*effects) error {
		if m.state.Phase != PhaseProcessed {
			return invalidPhase("edit processed items", m.state.Phase)
		}
		if index < 0 || index >= len(m.state.Processed) {
			return fmt.Errorf("%w: %d", common.ErrOutOfRange, index)
		}
		updated, err := m.state.Processed[index].With(field, value)
		if err != nil {
			return err
		}
		m.state.Processed[index] = updated
		m.state.SaveMessage = ""
		return nil
	})
}

// Close aborts the call in flight. Responses arriving afterwards are dropped
// and further actions fail with ErrClosed.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.release()
	m.gen++
}

// effects collects what to do once the lock is released.
type effects struct {
	route   *nav.Route
	notices []notify.Notice
}

func (fx *effects) notify(level notify.Level, msg string) {
	fx.notices = append(fx.notices, notify.Notice{Level: level, Message: msg})
}

func (fx *effects) navigate(route nav.Route) {
	fx.route = &route
}

// mutate runs apply under the lock. When apply fails nothing is emitted.
func (m *Machine) mutate(apply func(fx *effects) error) error {
	m.mu.Lock()
	var fx effects
	if err := apply(&fx); err != nil {
		m.mu.Unlock()
		return err
	}
	snap, listeners := m.state.clone(), m.snapshotListeners()
	m.mu.Unlock()

	m.emit(fx, snap, listeners)
	return nil
}

// settle applies the outcome of the call started as gen. A superseded call
// changes nothing. final releases the call's context.
func (m *Machine) settle(gen uint64, final bool, apply func(fx *effects) error) error {
	m.mu.Lock()
	if m.closed || gen != m.gen {
		m.mu.Unlock()
		slog.Debug("Discarding stale response", "generation", gen)
		return common.ErrSuperseded
	}
	if final {
		m.release()
	}
	var fx effects
	result := apply(&fx)
	snap, listeners := m.state.clone(), m.snapshotListeners()
	m.mu.Unlock()

	slog.Debug("Workflow phase", "phase", snap.Phase.String(), "transaction_id", snap.TransactionID)
	m.emit(fx, snap, listeners)
	return result
}

func (m *Machine) emit(fx effects, snap Snapshot, listeners []func(Snapshot)) {
	for _, n := range fx.notices {
		switch n.Level {
		case notify.LevelError:
			notify.Error(m.notifier, n.Message)
		case notify.LevelWarning:
			notify.Warning(m.notifier, n.Message)
		case notify.LevelSuccess:
			notify.Success(m.notifier, n.Message)
		default:
			notify.Info(m.notifier, n.Message)
		}
	}
	if fx.route != nil && m.navigator != nil {
		m.navigator.Navigate(*fx.route)
	}
	for _, fn := range listeners {
		fn(snap)
	}
}

// fail reverts to origin and records the message for err. An unauthorized
// error was already handled by the request helper, so it adds no notice.
// Must hold m.mu.
func (m *Machine) fail(fx *effects, origin Phase, err error, fallback string) error {
	m.state.Phase = origin

	switch {
	case errors.Is(err, api.ErrUnauthorized):
		slog.Info("Workflow aborted by expired session", "phase", origin.String())
		return err
	case errors.Is(err, context.Canceled):
		slog.Info("Workflow call canceled", "phase", origin.String())
		return err
	}

	msg := api.Message(err, fallback)
	m.state.Error = msg
	fx.notify(notify.LevelError, msg)
	slog.Warn("Workflow action failed", "phase", origin.String(), "error", err)
	return err
}

// idle fails when the machine is closed or a call is in flight. Must hold m.mu.
func (m *Machine) idle() error {
	if m.closed {
		return ErrClosed
	}
	if m.state.Busy() {
		return common.ErrBusy
	}
	return nil
}

// start enters a loading phase and returns the context for its call.
// Must hold m.mu.
func (m *Machine) start(ctx context.Context, to Phase) (context.Context, uint64) {
	callCtx, cancel := context.WithCancel(ctx)
	m.gen++
	m.cancel = cancel
	m.state.Phase = to
	m.state.Error = ""
	return callCtx, m.gen
}

// Must hold m.mu.
func (m *Machine) release() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// Must hold m.mu.
func (m *Machine) snapshotListeners() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		out = append(out, fn)
	}
	return out
}

func invalidPhase(action string, phase Phase) error {
	return fmt.Errorf("%w: cannot %s while %s", common.ErrInvalidPhase, action, phase)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
