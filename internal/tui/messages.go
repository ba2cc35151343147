package tui

import (
	"time"

	"github.com/equipeadalove/aduana/internal/document"
	"github.com/equipeadalove/aduana/internal/model"
)

// refreshMsg asks the model to re-read shared state after a change made
// outside the update loop.
type refreshMsg struct{}

type workflowDoneMsg struct {
	err    error
	action string
}

type fileOpenedMsg struct {
	err error
	doc *document.Document
}

type historyDoneMsg struct {
	err     error
	action  string
	deleted int64
}

type accountDoneMsg struct {
	err    error
	values map[string]string
	form   string
}

type profileLoadedMsg struct {
	err     error
	profile model.UserProfile
}

type toastExpiredMsg struct {
	at time.Time
}
