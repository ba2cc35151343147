package components

// ItemChangedMsg reports an edit of one field of one item row.
type ItemChangedMsg struct {
	Field string
	Value string
	Index int
}

// FileChosenMsg is sent when the user picks a file in the upload box.
type FileChosenMsg struct {
	Path string
}

// FileRemovedMsg is sent when the user removes the selected file.
type FileRemovedMsg struct{}

// SubmitMsg carries the values of a submitted field form, keyed by field.
type SubmitMsg struct {
	Values map[string]string
	Form   string
}

// TransactionSelectedMsg asks to open a saved transaction.
type TransactionSelectedMsg struct {
	ID int64
}

// RenameCommitMsg asks to send the rename draft.
type RenameCommitMsg struct{}

// DeleteConfirmMsg asks to delete the transaction pending confirmation.
type DeleteConfirmMsg struct{}

// NewProcessMsg asks to leave the current transaction and start over.
type NewProcessMsg struct{}

// FilterChangedMsg is sent after the month or year filter changed.
type FilterChangedMsg struct{}
