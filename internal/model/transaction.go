package model

import (
	"fmt"
)

// TransactionSummary is one entry of the history list: a single end-to-end
// run of upload, extract, process and save, identified by a server id.
type TransactionSummary struct {
	CreatedAt Timestamp `json:"created_at"`
	Name      *string   `json:"nome"`
	ID        int64     `json:"id"`
}

// TransactionDetail is a transaction fetched individually. At most one of
// PendingItems and ProcessedItems is expected to be non-empty, depending on
// how far the original session progressed.
type TransactionDetail struct {
	TransactionSummary
	PendingItems   []ExtractedItem `json:"pending_items,omitempty"`
	ProcessedItems []ProcessedItem `json:"processed_items,omitempty"`
}

// Extraction is the result of submitting a PDF for extraction. The
// transaction id is minted by the backend as a side effect.
type Extraction struct {
	Items         []ExtractedItem `json:"items"`
	TransactionID int64           `json:"transacao_id"`
}

// Title returns the display name of the transaction.
func (t TransactionSummary) Title() string {
	if t.Name != nil && *t.Name != "" {
		return *t.Name
	}
	return fmt.Sprintf("Transaction #%d", t.ID)
}

// DisplayName returns the stored name or "" when unnamed.
func (t TransactionSummary) DisplayName() string {
	if t.Name == nil {
		return ""
	}
	return *t.Name
}
