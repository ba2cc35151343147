package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/notify"
	"github.com/equipeadalove/aduana/internal/workflow"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.route.Name {
	case nav.Main:
		body = m.renderMain()
	case nav.Profile:
		body = m.renderProfile()
	case nav.Home, "":
		body = m.renderHome()
	default:
		body = m.renderForm()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderToasts(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.MarginBottom(0).Render("aduana")
	right := []string{m.theme.Faint.Render(m.route.Path())}
	if email := m.cfg.Session.Email(); email != "" && m.cfg.Session.IsAuthenticated() {
		right = append(right, m.theme.Normal.Render(email))
	}
	right = append(right, m.theme.Faint.Render("◐ "+m.theme.Name))

	header := title + "  " + strings.Join(right, m.theme.Faint.Render(" · "))
	return lipgloss.NewStyle().
		Width(m.width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(m.theme.Border).
		Render(header)
}

func (m Model) renderHome() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Customs documentation, classified"),
		m.theme.Normal.Render("Upload an invoice PDF, review the extracted items and"),
		m.theme.Normal.Render("export the classified spreadsheet."),
		"",
		m.theme.Faint.Render("enter log in · s sign up"),
	)
	return m.theme.RoundedBox.Render(content)
}

func (m Model) renderForm() string {
	form, ok := m.forms[m.route.Name]
	if !ok {
		return ""
	}

	var hints []string
	switch m.route.Name {
	case nav.Login:
		hints = append(hints, "Ctrl+U create account", "Ctrl+R forgot password")
	case nav.UpdatePassword:
		hints = append(hints, "Esc back to profile")
	default:
		hints = append(hints, "Esc back to login")
	}
	if m.accountBusy {
		hints = append([]string{"Please wait..."}, hints...)
	}
	if m.route.Name == nav.VerifyCode && m.recoveryEmail != "" {
		hints = append([]string{"Code sent to " + m.recoveryEmail}, hints...)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		form.View(),
		m.theme.Faint.Render(strings.Join(hints, " · ")),
	)
}

func (m Model) renderProfile() string {
	var lines []string
	lines = append(lines, m.theme.Title.Render("Profile"))
	switch {
	case m.profile != nil:
		lines = append(lines,
			m.theme.Faint.Render("Name")+"  "+m.theme.Bold.Render(m.profile.Name),
			m.theme.Faint.Render("Email")+" "+m.theme.Bold.Render(m.profile.Email),
		)
	default:
		lines = append(lines, m.theme.StatusPending.Render("Loading profile..."))
	}
	lines = append(lines, "", m.theme.Faint.Render("u update password · l log out · esc back"))
	return m.theme.RoundedBox.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderMain() string {
	sidebarWidth := m.sidebarWidth()
	if sidebarWidth == 0 {
		if m.sidebar.Focused() {
			return m.sidebar.View()
		}
		return m.renderWorkflow()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.sidebar.View(),
		"  ",
		m.renderWorkflow(),
	)
}

func (m Model) renderWorkflow() string {
	s := m.snap
	var sections []string

	if s.TransactionID != 0 {
		sections = append(sections, m.theme.Faint.Render(fmt.Sprintf("Transaction #%d · %s", s.TransactionID, s.Phase)))
	}

	switch s.Phase {
	case workflow.PhaseInitial, workflow.PhaseExtracting:
		sections = append(sections,
			m.theme.Title.Render("New process"),
			m.upload.View(),
		)
		if s.File != nil && !s.Busy() {
			sections = append(sections, m.theme.Faint.Render("Ctrl+G extract data"))
		}

	case workflow.PhaseExtracted, workflow.PhaseProcessing:
		sections = append(sections,
			m.theme.Title.Render("Review the extracted items"),
			m.extraction.View(),
		)
		if s.Phase == workflow.PhaseProcessing {
			sections = append(sections, m.upload.View())
		} else {
			sections = append(sections,
				m.theme.Faint.Render("Enter edit cell · Tab next · Ctrl+G process items"),
				m.fileRow(),
			)
		}

	case workflow.PhaseProcessed, workflow.PhaseExporting:
		sections = append(sections,
			m.theme.Title.Render("Validate the classified items"),
			m.validation.View(),
		)
		if s.SaveMessage != "" {
			sections = append(sections, m.theme.StatusSuccess.Render("✓ "+s.SaveMessage))
		}
		if s.Phase == workflow.PhaseExporting {
			sections = append(sections, m.upload.View())
		} else {
			sections = append(sections,
				m.theme.Faint.Render("Enter edit cell · Ctrl+G save and export · Ctrl+N new process"),
				m.fileRow(),
			)
		}

	case workflow.PhaseDownloaded:
		content := lipgloss.JoinVertical(lipgloss.Left,
			m.theme.StatusSuccess.Render("✓ Spreadsheet ready"),
			m.theme.Bold.Render(s.DownloadName()),
			m.theme.Faint.Render(s.DownloadPath),
		)
		if s.SaveMessage != "" {
			content = lipgloss.JoinVertical(lipgloss.Left, content, m.theme.StatusSuccess.Render(s.SaveMessage))
		}
		sections = append(sections,
			m.theme.RoundedBox.Render(content),
			m.theme.Faint.Render("v view data · n new process"),
			m.fileRow(),
		)
	}

	if s.Restoring {
		sections = append(sections, m.upload.View())
	}
	if s.Error != "" && !s.Busy() {
		sections = append(sections, m.theme.StatusError.Render("✗ "+s.Error))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// fileRow lets the user replace the file once the workflow is past the
// upload step; the path input replaces the row while a new one is chosen.
func (m Model) fileRow() string {
	if m.changingFile {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.upload.View(),
			m.theme.Faint.Render("A new file discards the current items · Esc cancel"),
		)
	}
	hint := "Ctrl+O choose another file"
	if f := m.snap.File; f != nil {
		return m.theme.Faint.Render("📄 " + f.Name + " · " + hint + " · Ctrl+X remove")
	}
	return m.theme.Faint.Render(hint)
}

func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		var style lipgloss.Style
		icon := "ℹ"
		switch t.Level {
		case notify.LevelSuccess:
			style, icon = m.theme.StatusSuccess, "✓"
		case notify.LevelWarning:
			style, icon = m.theme.StatusWarning, "⚠"
		case notify.LevelError:
			style, icon = m.theme.StatusError, "✗"
		default:
			style = m.theme.StatusInfo
		}
		lines = append(lines, style.Render(icon+" "+t.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
