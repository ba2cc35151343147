package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipeadalove/aduana/internal/history"
	"github.com/equipeadalove/aduana/internal/model"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		want    history.Filter
		month   int
		year    int
		wantErr bool
	}{
		{name: "no filter", want: history.Filter{}},
		{name: "month only", month: 3, want: history.Filter{Month: time.March}},
		{name: "month and year", month: 12, year: 2024, want: history.Filter{Month: time.December, Year: 2024}},
		{name: "month out of range", month: 13, wantErr: true},
		{name: "negative year", year: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilter(tt.month, tt.year)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc", "4.2"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestPages(t *testing.T) {
	assert.Equal(t, "? pages", pages(0))
	assert.Equal(t, "1 page", pages(1))
	assert.Equal(t, "12 pages", pages(12))
}

func TestRenderDetail(t *testing.T) {
	processed := model.TransactionDetail{
		TransactionSummary: model.TransactionSummary{ID: 9},
		PendingItems:       []model.ExtractedItem{{PartNumber: "PENDING-1"}},
		ProcessedItems:     []model.ProcessedItem{{PartNumber: "DONE-1", Manufacturer: "ACME"}},
	}
	out := renderDetail(processed)
	assert.Contains(t, out, "classified")
	assert.Contains(t, out, "DONE-1")
	assert.NotContains(t, out, "PENDING-1")

	assert.Contains(t, renderDetail(model.TransactionDetail{TransactionSummary: model.TransactionSummary{ID: 9}}), "no saved items")
}

func TestSetupLogging(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(previous)
		viper.Reset()
	})

	viper.Set("logging.level", "verbose")
	assert.Error(t, setupLogging(os.Stderr))

	viper.Set("logging.level", "debug")
	viper.Set("logging.format", "xml")
	assert.Error(t, setupLogging(os.Stderr))

	viper.Set("logging.format", "json")
	assert.NoError(t, setupLogging(os.Stderr))
}

func TestRedirectLogs(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(previous)
		viper.Reset()
	})
	viper.Set("logging.level", "info")
	viper.Set("logging.format", "console")

	path := filepath.Join(t.TempDir(), "logs", "tui.log")
	restore, err := redirectLogs(path)
	require.NoError(t, err)

	slog.Info("inside the interface", "route", "/principal")
	restore()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inside the interface")
	assert.Same(t, previous, slog.Default())
}
