package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/equipeadalove/aduana/internal/document"
	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/tui/components"
)

const formLogout = "logout"

// runWorkflow runs a blocking workflow action off the update loop.
func (m Model) runWorkflow(action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.cfg.Context
	return func() tea.Msg {
		err := fn(ctx)
		if err != nil {
			slog.Debug("Workflow action returned", "action", action, "error", err)
		}
		return workflowDoneMsg{action: action, err: err}
	}
}

func (m Model) loadTransaction(id int64) tea.Cmd {
	machine := m.cfg.Machine
	return m.runWorkflow("load", func(ctx context.Context) error {
		return machine.Load(ctx, id)
	})
}

// openDocument validates the file off the update loop; counting pages may
// read the whole PDF.
func (m Model) openDocument(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := document.Open(path)
		return fileOpenedMsg{doc: doc, err: err}
	}
}

func (m Model) loadHistory() tea.Cmd {
	ctx, list := m.cfg.Context, m.cfg.History
	return func() tea.Msg {
		return historyDoneMsg{action: "load", err: list.Load(ctx)}
	}
}

func (m Model) commitRename() tea.Cmd {
	ctx, list := m.cfg.Context, m.cfg.History
	return func() tea.Msg {
		return historyDoneMsg{action: "rename", err: list.CommitRename(ctx)}
	}
}

func (m Model) confirmDelete() tea.Cmd {
	ctx, list := m.cfg.Context, m.cfg.History
	id := list.PendingDelete()
	return func() tea.Msg {
		return historyDoneMsg{action: "delete", deleted: id, err: list.ConfirmDelete(ctx)}
	}
}

func (m Model) loadProfile() tea.Cmd {
	ctx, account := m.cfg.Context, m.cfg.Account
	return func() tea.Msg {
		profile, err := account.Profile(ctx)
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (m Model) logout() tea.Cmd {
	ctx, account := m.cfg.Context, m.cfg.Account
	return func() tea.Msg {
		return accountDoneMsg{form: formLogout, err: account.Logout(ctx)}
	}
}

// submit runs the account operation behind a submitted form. Validation
// failures are reported by the service before any request.
func (m *Model) submit(msg components.SubmitMsg) tea.Cmd {
	if m.accountBusy {
		return nil
	}
	ctx, account := m.cfg.Context, m.cfg.Account
	v := msg.Values

	var op func() error
	switch nav.Name(msg.Form) {
	case nav.Login:
		op = func() error { return account.Login(ctx, v["email"], v["password"]) }
	case nav.Signup:
		op = func() error {
			reg := model.Registration{Name: v["name"], Email: v["email"], Password: v["password"]}
			return account.Signup(ctx, reg, v["confirm"])
		}
	case nav.RecoverPassword:
		op = func() error { return account.RequestRecovery(ctx, v["email"]) }
	case nav.VerifyCode:
		email := m.recoveryEmail
		op = func() error { return account.VerifyCode(ctx, email, v["code"]) }
	case nav.ResetPassword:
		email, code := m.recoveryEmail, m.recoveryCode
		op = func() error { return account.ResetPassword(ctx, email, code, v["password"], v["confirm"]) }
	case nav.UpdatePassword:
		op = func() error { return account.UpdatePassword(ctx, v["current"], v["password"], v["confirm"]) }
	default:
		return nil
	}

	m.accountBusy = true
	return func() tea.Msg {
		return accountDoneMsg{form: msg.Form, values: v, err: op()}
	}
}
