package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "rfc3339", input: `"2024-03-15T10:30:00Z"`, want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{name: "zoneless", input: `"2024-03-15T10:30:00.123456"`, want: time.Date(2024, 3, 15, 10, 30, 0, 123456000, time.UTC)},
		{name: "space separated", input: `"2024-03-15 10:30:00"`, want: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{name: "null", input: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestTimestampUnmarshal_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`42`), &ts))
}

func TestTransactionDetailDecode(t *testing.T) {
	body := `{"id": 7, "nome": null, "created_at": "2024-03-01T08:00:00",
		"processed_items": [{"partnumber": "AB-12X", "fabricante": "ACME", "is_new_manufacturer": true}]}`

	var detail TransactionDetail
	require.NoError(t, json.Unmarshal([]byte(body), &detail))
	assert.Equal(t, int64(7), detail.ID)
	assert.Equal(t, "Transaction #7", detail.Title())
	assert.Equal(t, time.March, detail.CreatedAt.Month())
	require.Len(t, detail.ProcessedItems, 1)
	assert.True(t, detail.ProcessedItems[0].IsNewManufacturer)
	assert.Empty(t, detail.PendingItems)
}
