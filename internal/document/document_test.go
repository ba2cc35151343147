package document

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/testutil"
)

func TestOpen_ValidPDF(t *testing.T) {
	path := testutil.WritePDF(t, "invoice.pdf")

	doc, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, "invoice.pdf", doc.Name)
	assert.Equal(t, 1, doc.Pages)
	assert.Positive(t, doc.Size)
	assert.Equal(t, "invoice_classificado.xlsx", doc.DownloadName())

	rc, err := doc.Reader()
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, testutil.MinimalPDF(), data)
}

func TestOpen_RejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o600))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrNotPDF)
	msg, ok := common.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Please select a PDF file.", msg)
}

func TestOpen_Directory(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_UnparseablePDFStillAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\ngarbage"), 0o600))

	doc, err := Open(path)
	require.NoError(t, err)
	assert.Zero(t, doc.Pages)
}

func TestDownloadName(t *testing.T) {
	tests := map[string]string{
		"invoice.pdf":      "invoice_classificado.xlsx",
		"INVOICE.PDF":      "INVOICE_classificado.xlsx",
		"a.pdf.pdf":        "a.pdf_classificado.xlsx",
		"transacao_7":      "transacao_7_classificado.xlsx",
		"report.final.pdf": "report.final_classificado.xlsx",
	}
	for in, want := range tests {
		assert.Equal(t, want, DownloadName(in), in)
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2<<20))
}
