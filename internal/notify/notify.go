// Package notify carries short user-visible notices (success, error, info)
// from the domain packages to whichever front-end is showing them.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Level is the severity of a notice.
type Level int

// Notice levels.
const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a single message for the user.
type Notice struct {
	At      time.Time
	Message string
	Level   Level
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

// Notify calls f.
func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

func send(n Notifier, level Level, msg string) {
	if n == nil {
		return
	}
	n.Notify(Notice{Level: level, Message: msg, At: time.Now()})
}

// Success sends a success notice.
func Success(n Notifier, msg string) { send(n, LevelSuccess, msg) }

// Error sends an error notice.
func Error(n Notifier, msg string) { send(n, LevelError, msg) }

// Info sends an informational notice.
func Info(n Notifier, msg string) { send(n, LevelInfo, msg) }

// Warning sends a warning notice.
func Warning(n Notifier, msg string) { send(n, LevelWarning, msg) }

// Queue buffers notices until a front-end drains them. Safe for concurrent use.
type Queue struct {
	notices []Notice
	mu      sync.Mutex
}

// Notify appends n and logs it.
func (q *Queue) Notify(n Notice) {
	slog.Debug("Notice", "level", n.Level.String(), "message", n.Message)
	q.mu.Lock()
	q.notices = append(q.notices, n)
	q.mu.Unlock()
}

// Drain returns and clears the buffered notices.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.notices
	q.notices = nil
	return out
}

// Last returns the most recent notice without draining.
func (q *Queue) Last() (Notice, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.notices) == 0 {
		return Notice{}, false
	}
	return q.notices[len(q.notices)-1], true
}

// Len returns the number of buffered notices.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.notices)
}
