package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/model"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewPrompter(strings.NewReader(input), &out), &out
}

func TestAsk(t *testing.T) {
	p, out := newTestPrompter("\nvalue\n")
	ctx := context.Background()

	v, err := p.Ask(ctx, "Name", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", v)
	assert.Contains(t, out.String(), "Name [default]")

	v, err = p.Ask(ctx, "Name", "default")
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestAskRequired(t *testing.T) {
	p, _ := newTestPrompter("\n")
	_, err := p.AskRequired(context.Background(), "Email")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAskSecret_NonTerminalReadsLine(t *testing.T) {
	p, _ := newTestPrompter("hunter2\n")
	secret, err := p.AskSecret(context.Background(), "Password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "sim\n", want: true},
		{input: "n\n", def: true, want: false},
		{input: "\n", def: true, want: true},
		{input: "\n", want: false},
		{input: "maybe\ny\n", want: true},
	}
	for _, tt := range tests {
		p, _ := newTestPrompter(tt.input)
		got, err := p.Confirm(context.Background(), "Continue?", tt.def)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

type change struct {
	field string
	value string
	index int
}

func TestReviewExtracted(t *testing.T) {
	items := []model.ExtractedItem{
		{PartNumber: "AB-12", RawDescription: "raw text"},
		{PartNumber: "CD-34", RawDescription: "other"},
	}
	// Item 1: fix part number, keep description. Item 2: keep both.
	p, _ := newTestPrompter("AB-12X\n\n\n\n")

	var changes []change
	err := p.ReviewExtracted(context.Background(), items, func(i int, f model.ExtractedField, v string) error {
		changes = append(changes, change{index: i, field: string(f), value: v})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []change{{index: 0, field: "partnumber", value: "AB-12X"}}, changes)
}

func TestReviewProcessed(t *testing.T) {
	items := []model.ProcessedItem{{PartNumber: "AB-12X", IsNewManufacturer: true}}
	p, out := newTestPrompter("ACME\nDetroit, US\n8471.30.12\n\n")

	var changes []change
	err := p.ReviewProcessed(context.Background(), items, func(i int, f model.ProcessedField, v string) error {
		changes = append(changes, change{index: i, field: string(f), value: v})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []change{
		{index: 0, field: "fabricante", value: "ACME"},
		{index: 0, field: "localizacao", value: "Detroit, US"},
		{index: 0, field: "ncm", value: "8471.30.12"},
	}, changes)
	assert.Contains(t, out.String(), "Unknown manufacturer")
	assert.NotContains(t, out.String(), "Part number →")
}

func TestReviewStopsOnInputEnd(t *testing.T) {
	items := []model.ExtractedItem{{PartNumber: "A"}}
	p, _ := newTestPrompter("")
	err := p.ReviewExtracted(context.Background(), items, func(int, model.ExtractedField, string) error { return nil })
	assert.Error(t, err)
}

func TestProgress(t *testing.T) {
	p, out := newTestPrompter("")
	p.Step("ignored without a bar")

	p.StartProgress(3, "Uploading")
	p.Step("Extracting")
	p.Step("Processing")
	p.Step("Exporting")
	p.FinishProgress()
	p.FinishProgress()

	assert.Contains(t, out.String(), "3/3")
}
