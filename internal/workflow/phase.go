package workflow

// Phase is the state of the main view.
type Phase int

// Phases, in workflow order.
const (
	PhaseInitial Phase = iota
	PhaseExtracting
	PhaseExtracted
	PhaseProcessing
	PhaseProcessed
	PhaseExporting
	PhaseDownloaded
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseExtracting:
		return "extracting"
	case PhaseExtracted:
		return "extracted"
	case PhaseProcessing:
		return "processing"
	case PhaseProcessed:
		return "processed"
	case PhaseExporting:
		return "exporting"
	case PhaseDownloaded:
		return "downloaded"
	default:
		return "unknown"
	}
}

// IsLoading reports whether a remote call is in flight in this phase.
func (p Phase) IsLoading() bool {
	return p == PhaseExtracting || p == PhaseProcessing || p == PhaseExporting
}
