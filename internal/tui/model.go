package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/equipeadalove/aduana/internal/api"
	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/notify"
	"github.com/equipeadalove/aduana/internal/tui/components"
	"github.com/equipeadalove/aduana/internal/tui/themes"
	"github.com/equipeadalove/aduana/internal/workflow"
)

const toastTTL = 4 * time.Second

// Model is the root bubbletea model. It renders the route held by the
// router and delegates to the component of the active view.
type Model struct {
	theme         themes.Theme
	cfg           Config
	profile       *model.UserProfile
	forms         map[nav.Name]components.FieldForm
	help          help.Model
	keymap        KeyMap
	snap          workflow.Snapshot
	route         nav.Route
	toasts        []notify.Notice
	recoveryEmail string
	recoveryCode  string
	upload        components.UploadBox
	sidebar       components.HistorySidebar
	extraction    components.ExtractionForm
	validation    components.ValidationForm
	width         int
	height        int
	accountBusy   bool
	changingFile  bool
	quitting      bool
}

// New creates the root model.
func New(cfg Config, opts ...Option) Model {
	cfg.apply(opts)

	m := Model{
		theme:      cfg.Theme,
		cfg:        cfg,
		help:       help.New(),
		keymap:     DefaultKeyMap(),
		upload:     components.NewUploadBox(cfg.Theme),
		sidebar:    components.NewHistorySidebar(cfg.History, cfg.Theme),
		extraction: components.NewExtractionForm(nil, cfg.Theme),
		validation: components.NewValidationForm(nil, cfg.Theme),
		width:      cfg.Width,
		height:     cfg.Height,
	}
	m.forms = newForms(cfg.Theme)
	m.resize()
	return m
}

func newForms(theme themes.Theme) map[nav.Name]components.FieldForm {
	email := components.Field{Key: "email", Label: "Email", Placeholder: "you@company.com"}
	password := components.Field{Key: "password", Label: "Password", Secret: true}
	confirm := components.Field{Key: "confirm", Label: "Confirm password", Secret: true}

	return map[nav.Name]components.FieldForm{
		nav.Login: components.NewFieldForm(string(nav.Login), "Log in", []components.Field{
			email, password,
		}, theme),
		nav.Signup: components.NewFieldForm(string(nav.Signup), "Create account", []components.Field{
			{Key: "name", Label: "Name"}, email, password, confirm,
		}, theme),
		nav.RecoverPassword: components.NewFieldForm(string(nav.RecoverPassword), "Recover password", []components.Field{
			email,
		}, theme),
		nav.VerifyCode: components.NewFieldForm(string(nav.VerifyCode), "Verification code", []components.Field{
			{Key: "code", Label: "6-digit code sent to your email", CharLimit: 6},
		}, theme),
		nav.ResetPassword: components.NewFieldForm(string(nav.ResetPassword), "New password", []components.Field{
			{Key: "password", Label: "New password", Secret: true}, confirm,
		}, theme),
		nav.UpdatePassword: components.NewFieldForm(string(nav.UpdatePassword), "Update password", []components.Field{
			{Key: "current", Label: "Current password", Secret: true},
			{Key: "password", Label: "New password", Secret: true},
			confirm,
		}, theme),
	}
}

// Init starts the cursor blink and shows the initial route.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.upload.Init(), refresh)
}

func refresh() tea.Msg { return refreshMsg{} }

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKeys(msg); handled {
			cmds = append(cmds, cmd)
			break
		}
		cmds = append(cmds, m.handleRouteKeys(msg))

	case workflowDoneMsg:
		cmds = append(cmds, m.handleWorkflowDone(msg))

	case fileOpenedMsg:
		m.handleFileOpened(msg)

	case historyDoneMsg:
		m.handleHistoryDone(msg)

	case accountDoneMsg:
		m.handleAccountDone(msg)

	case profileLoadedMsg:
		m.accountBusy = false
		if msg.err == nil {
			profile := msg.profile
			m.profile = &profile
		} else if !errors.Is(msg.err, api.ErrUnauthorized) {
			notify.Error(m.cfg.Notices, api.Message(msg.err, "Could not load the profile."))
		}

	case toastExpiredMsg:
		m.expireToasts(msg.at)

	case components.FileChosenMsg:
		cmds = append(cmds, m.openDocument(msg.Path))

	case components.FileRemovedMsg:
		if err := m.cfg.Machine.RemoveFile(); err != nil {
			m.report(err)
		}

	case components.TransactionSelectedMsg:
		m.sidebar.Blur()
		m.cfg.Router.Navigate(nav.Transaction(msg.ID))

	case components.NewProcessMsg:
		m.sidebar.Blur()
		m.cfg.Machine.Reset()
		m.cfg.Router.Navigate(nav.To(nav.Main))

	case components.RenameCommitMsg:
		cmds = append(cmds, m.commitRename())

	case components.DeleteConfirmMsg:
		cmds = append(cmds, m.confirmDelete())

	case components.SubmitMsg:
		cmds = append(cmds, m.submit(msg))

	default:
		// Spinner and cursor ticks.
		var cmd tea.Cmd
		m.upload, cmd = m.upload.Update(msg)
		cmds = append(cmds, cmd)
		if form, ok := m.forms[m.route.Name]; ok {
			form, cmd = form.Update(msg)
			m.forms[m.route.Name] = form
			cmds = append(cmds, cmd)
		}
	}

	cmds = append(cmds, m.sync())
	if m.cfg.Recorder != nil {
		m.cfg.Recorder.RecordState(m, msg)
	}
	return m, tea.Batch(cmds...)
}

// handleGlobalKeys handles keys that work on every view.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		m.cfg.Machine.Close()
		return tea.Quit, true
	case key.Matches(msg, m.keymap.ToggleTheme):
		m.setTheme(m.theme.Toggle())
		return nil, true
	case key.Matches(msg, m.keymap.ToggleHelp) && !(msg.String() == "?" && m.capturingText()):
		m.help.ShowAll = !m.help.ShowAll
		return nil, true
	case key.Matches(msg, m.keymap.Back):
		m.cfg.Router.Back()
		return nil, true
	}
	return nil, false
}

func (m *Model) handleRouteKeys(msg tea.KeyMsg) tea.Cmd {
	switch m.route.Name {
	case nav.Home:
		switch msg.String() {
		case "enter", "l":
			m.cfg.Router.Navigate(nav.To(nav.Main))
		case "s":
			m.cfg.Router.Navigate(nav.To(nav.Signup))
		}
		return nil

	case nav.Main:
		return m.handleMainKeys(msg)

	case nav.Profile:
		switch msg.String() {
		case "u":
			m.cfg.Router.Navigate(nav.To(nav.UpdatePassword))
		case "l":
			return m.logout()
		case "esc":
			m.cfg.Router.Navigate(nav.To(nav.Main))
		}
		return nil
	}

	if m.route.Name == nav.Login {
		switch {
		case key.Matches(msg, m.keymap.Signup):
			m.cfg.Router.Navigate(nav.To(nav.Signup))
			return nil
		case key.Matches(msg, m.keymap.Recover):
			m.cfg.Router.Navigate(nav.To(nav.RecoverPassword))
			return nil
		}
	}

	form, ok := m.forms[m.route.Name]
	if !ok {
		return nil
	}
	if msg.Type == tea.KeyEsc {
		if m.route.Name == nav.UpdatePassword {
			m.cfg.Router.Navigate(nav.To(nav.Profile))
		} else if m.route.Name != nav.Login {
			m.cfg.Router.Navigate(nav.To(nav.Login))
		}
		return nil
	}
	if m.accountBusy {
		return nil
	}
	form, cmd := form.Update(msg)
	m.forms[m.route.Name] = form
	return cmd
}

func (m *Model) handleMainKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.SwitchPane):
		if m.sidebar.Focused() {
			m.sidebar.Blur()
		} else if !m.sidebar.Capturing() {
			m.sidebar.Focus()
		}
		return nil
	case key.Matches(msg, m.keymap.Profile):
		m.cfg.Router.Navigate(nav.To(nav.Profile))
		return nil
	}

	if m.sidebar.Focused() {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return cmd
	}

	if m.changingFile {
		return m.updateFileChange(msg)
	}

	snap := m.snap
	editing := m.extraction.Editing() || m.validation.Editing()
	switch {
	case key.Matches(msg, m.keymap.Advance):
		return m.advance(snap)
	case key.Matches(msg, m.keymap.StartNew):
		if snap.Phase == workflow.PhaseProcessed || snap.Phase == workflow.PhaseDownloaded {
			m.report(m.cfg.Machine.StartNew())
		}
		return nil
	case !editing && key.Matches(msg, m.keymap.ChangeFile):
		m.beginFileChange(snap)
		return nil
	case !editing && key.Matches(msg, m.keymap.Remove):
		if snap.File != nil {
			m.report(m.cfg.Machine.RemoveFile())
		}
		return nil
	}

	var cmd tea.Cmd
	switch snap.Phase {
	case workflow.PhaseInitial:
		if !snap.Restoring {
			m.upload, cmd = m.upload.Update(msg)
		}
	case workflow.PhaseExtracted:
		m.extraction, cmd = m.extraction.Update(msg)
		for _, change := range m.extraction.TakeChanges() {
			m.report(m.cfg.Machine.EditExtracted(change.Index, model.ExtractedField(change.Field), change.Value))
		}
	case workflow.PhaseProcessed:
		m.validation, cmd = m.validation.Update(msg)
		for _, change := range m.validation.TakeChanges() {
			m.report(m.cfg.Machine.EditProcessed(change.Index, model.ProcessedField(change.Field), change.Value))
		}
	case workflow.PhaseDownloaded:
		switch msg.String() {
		case "v":
			m.report(m.cfg.Machine.ViewData())
		case "n":
			m.report(m.cfg.Machine.StartNew())
		}
	}
	return cmd
}

// beginFileChange reopens the path input so a new file can replace the
// current one. Selecting it starts over from the upload step.
func (m *Model) beginFileChange(snap workflow.Snapshot) {
	if snap.Busy() || snap.Restoring {
		return
	}
	if snap.Phase == workflow.PhaseInitial && snap.File == nil {
		return
	}
	m.changingFile = true
	m.upload.Reopen()
}

func (m *Model) updateFileChange(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEsc {
		m.changingFile = false
		m.upload.SetDocument(m.snap.File)
		return nil
	}
	var cmd tea.Cmd
	m.upload, cmd = m.upload.Update(msg)
	return cmd
}

// capturingText reports whether printable keys are being typed into an
// input rather than used as shortcuts.
func (m Model) capturingText() bool {
	if _, ok := m.forms[m.route.Name]; ok {
		return true
	}
	if m.route.Name != nav.Main {
		return false
	}
	return m.changingFile || m.sidebar.Capturing() ||
		m.extraction.Editing() || m.validation.Editing() ||
		(m.snap.Phase == workflow.PhaseInitial && m.upload.Typing())
}

// advance runs the next workflow step of the current phase.
func (m *Model) advance(snap workflow.Snapshot) tea.Cmd {
	machine := m.cfg.Machine
	switch snap.Phase {
	case workflow.PhaseInitial:
		if snap.File == nil {
			notify.Warning(m.cfg.Notices, "Select a PDF file first.")
			return nil
		}
		return m.runWorkflow("extract", machine.Extract)
	case workflow.PhaseExtracted:
		return m.runWorkflow("process", machine.Process)
	case workflow.PhaseProcessed:
		return m.runWorkflow("finalize", machine.Finalize)
	}
	return nil
}

func (m *Model) handleWorkflowDone(msg workflowDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.report(msg.err)
		return nil
	}
	switch msg.action {
	case "extract", "finalize":
		// The history gains or updates a transaction.
		return m.loadHistory()
	}
	return nil
}

func (m *Model) handleFileOpened(msg fileOpenedMsg) {
	if msg.err != nil {
		notify.Error(m.cfg.Notices, api.Message(msg.err, "Could not open the file."))
		return
	}
	if err := m.cfg.Machine.SelectFile(msg.doc); err != nil {
		m.report(err)
		return
	}
	m.changingFile = false
}

func (m *Model) handleHistoryDone(msg historyDoneMsg) {
	if msg.err != nil || msg.action != "delete" {
		return
	}
	if msg.deleted != 0 && msg.deleted == m.snap.TransactionID {
		m.cfg.Machine.Reset()
		m.cfg.Router.Navigate(nav.To(nav.Main))
	}
}

func (m *Model) handleAccountDone(msg accountDoneMsg) {
	m.accountBusy = false
	if msg.err != nil {
		notify.Error(m.cfg.Notices, api.Message(msg.err, "Something went wrong. Try again."))
		return
	}

	if form, ok := m.forms[nav.Name(msg.form)]; ok {
		form.Reset()
		m.forms[nav.Name(msg.form)] = form
	}

	router := m.cfg.Router
	switch nav.Name(msg.form) {
	case nav.Signup:
		notify.Success(m.cfg.Notices, "Account created! Log in to continue.")
		router.Navigate(nav.To(nav.Login))
	case nav.RecoverPassword:
		m.recoveryEmail = msg.values["email"]
		notify.Success(m.cfg.Notices, "Code sent! Check your email.")
		router.Navigate(nav.To(nav.VerifyCode))
	case nav.VerifyCode:
		m.recoveryCode = msg.values["code"]
		notify.Success(m.cfg.Notices, "Code verified!")
		router.Navigate(nav.To(nav.ResetPassword))
	case nav.ResetPassword:
		m.recoveryEmail, m.recoveryCode = "", ""
		notify.Success(m.cfg.Notices, "Password reset! Log in with the new password.")
		router.Navigate(nav.To(nav.Login))
	case nav.UpdatePassword:
		notify.Success(m.cfg.Notices, "Password updated! Log in again.")
	case formLogout:
		m.profile = nil
	}
}

// report shows errors raised before any request was made. Remote failures
// are reported by the workflow and history themselves.
func (m *Model) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, common.ErrBusy):
		notify.Warning(m.cfg.Notices, "Wait for the current request to finish.")
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrNoFile):
		notify.Error(m.cfg.Notices, api.Message(err, "Select a PDF file first."))
	}
}

// sync re-reads shared state into the components and reacts to route
// changes made by the session, the workflow or the router.
func (m *Model) sync() tea.Cmd {
	var cmds []tea.Cmd

	m.snap = m.cfg.Machine.Snapshot()
	m.extraction.SetItems(m.snap.Extracted)
	m.validation.SetItems(m.snap.Processed)
	if m.snap.Busy() {
		m.changingFile = false
	}
	if !m.changingFile && m.upload.Document() != m.snap.File {
		m.upload.SetDocument(m.snap.File)
	}
	cmds = append(cmds, m.upload.SetLoading(m.snap.Busy(), loadingStatus(m.snap)))
	m.sidebar.SetCurrent(m.snap.TransactionID)

	if current := m.cfg.Router.Current(); current != m.route {
		prev := m.route
		m.route = current
		cmds = append(cmds, m.onRouteChange(prev, current))
	}

	if notices := m.cfg.Notices.Drain(); len(notices) > 0 {
		now := time.Now()
		for i := range notices {
			if notices[i].At.IsZero() {
				notices[i].At = now
			}
		}
		m.toasts = append(m.toasts, notices...)
		if len(m.toasts) > 3 {
			m.toasts = m.toasts[len(m.toasts)-3:]
		}
		cmds = append(cmds, tea.Tick(toastTTL, func(t time.Time) tea.Msg { return toastExpiredMsg{at: t} }))
	}

	return tea.Batch(cmds...)
}

func (m *Model) onRouteChange(prev, next nav.Route) tea.Cmd {
	var cmds []tea.Cmd

	if next.Name != nav.Main && m.changingFile {
		m.changingFile = false
		m.upload.SetDocument(m.snap.File)
	}
	if prev.Name == nav.Main && !next.Protected() {
		// Leaving the protected area, e.g. after the session expired.
		m.cfg.Machine.Reset()
		m.sidebar.Blur()
		m.profile = nil
	}

	switch next.Name {
	case nav.Main:
		if next.Scoped() && next.TransactionID != m.snap.TransactionID {
			cmds = append(cmds, m.loadTransaction(next.TransactionID))
		}
		if prev.Name != nav.Main {
			cmds = append(cmds, m.loadHistory())
		}
	case nav.Profile:
		cmds = append(cmds, m.loadProfile())
	}
	return tea.Batch(cmds...)
}

func (m *Model) expireToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Sub(t.At) < toastTTL {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m *Model) setTheme(theme themes.Theme) {
	m.theme = theme
	m.upload.SetTheme(theme)
	m.sidebar.SetTheme(theme)
	m.extraction.SetTheme(theme)
	m.validation.SetTheme(theme)
	for name, form := range m.forms {
		form.SetTheme(theme)
		m.forms[name] = form
	}
}

// Theme returns the active theme.
func (m Model) Theme() themes.Theme {
	return m.theme
}

// Route returns the route being shown.
func (m Model) Route() nav.Route {
	return m.route
}

func (m *Model) resize() {
	sidebarWidth := m.sidebarWidth()
	mainWidth := max(m.width-sidebarWidth-2, 30)
	bodyHeight := max(m.height-8, 6)

	m.upload.Resize(min(mainWidth, 70))
	m.extraction.Resize(mainWidth, bodyHeight-3)
	m.validation.Resize(mainWidth, bodyHeight-4)
	m.sidebar.Resize(max(sidebarWidth, 30), bodyHeight)
	for name, form := range m.forms {
		form.Resize(min(m.width-4, 60))
		m.forms[name] = form
	}
}

// sidebarWidth is zero on narrow terminals, where the sidebar replaces the
// main pane while focused.
func (m Model) sidebarWidth() int {
	if m.width < 100 {
		return 0
	}
	return 34
}

func loadingStatus(s workflow.Snapshot) string {
	switch {
	case s.Restoring:
		return "Loading transaction..."
	case s.Phase == workflow.PhaseExtracting:
		return "Extracting data from the PDF..."
	case s.Phase == workflow.PhaseProcessing:
		return "Classifying items..."
	case s.Phase == workflow.PhaseExporting:
		return "Saving and generating the spreadsheet..."
	}
	return ""
}
