package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Recorder captures TUI state changes and renders for debugging.
type Recorder struct {
	logFile  *os.File
	frameDir string
	frameNum int
	enabled  bool
}

// NewRecorder creates a recorder writing under dir, or a temporary
// directory when dir is empty. A disabled recorder does nothing.
func NewRecorder(enabled bool, dir string) *Recorder {
	if !enabled {
		return &Recorder{enabled: false}
	}

	if dir == "" {
		dir = filepath.Join(os.TempDir(), fmt.Sprintf("aduana-record-%d", time.Now().Unix()))
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return &Recorder{enabled: false}
	}

	logPath := filepath.Join(dir, "tui.log")
	logFile, err := os.Create(filepath.Clean(logPath)) // #nosec G304 -- safe constructed path
	if err != nil {
		return &Recorder{enabled: false}
	}

	r := &Recorder{
		enabled:  true,
		logFile:  logFile,
		frameDir: dir,
	}
	r.Log("Recorder started at %s", dir)
	return r
}

// Dir returns the directory frames are written to.
func (r *Recorder) Dir() string {
	return r.frameDir
}

// RecordState captures the state after msg was handled.
func (r *Recorder) RecordState(m Model, msg tea.Msg) {
	if !r.enabled {
		return
	}
	r.frameNum++

	r.Log("\n=== Frame %d ===", r.frameNum)
	r.Log("Time: %s", time.Now().Format("15:04:05.000"))
	r.Log("Message: %T", msg)
	r.Log("Route: %s", m.route.Path())
	r.Log("Phase: %s (transaction %d, busy %v)", m.snap.Phase, m.snap.TransactionID, m.snap.Busy())
	r.Log("Items: %d extracted, %d processed", len(m.snap.Extracted), len(m.snap.Processed))

	view := m.View()
	framePath := filepath.Join(r.frameDir, fmt.Sprintf("frame-%04d.txt", r.frameNum))
	if err := os.WriteFile(framePath, []byte(view), 0o600); err != nil {
		r.Log("Error saving frame: %v", err)
	}
}

// Log writes to the log file.
func (r *Recorder) Log(format string, args ...any) {
	if !r.enabled || r.logFile == nil {
		return
	}
	if _, err := fmt.Fprintf(r.logFile, format+"\n", args...); err != nil {
		return
	}
	_ = r.logFile.Sync()
}

// Frames returns the number of frames captured.
func (r *Recorder) Frames() int {
	return r.frameNum
}

// Close closes the recorder.
func (r *Recorder) Close() {
	if r.logFile != nil {
		r.Log("Recording complete. %d frames captured.", r.frameNum)
		_ = r.logFile.Close()
		r.logFile = nil
	}
}
