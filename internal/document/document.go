// Package document handles the local PDF the user selects for extraction.
package document

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/equipeadalove/aduana/internal/common"
)

// DownloadSuffix is appended to the base name of exported spreadsheets.
const DownloadSuffix = "_classificado.xlsx"

// ErrNotPDF is returned when the selected file is not a PDF.
var ErrNotPDF = errors.New("file is not a PDF")

// Document is a selected PDF. Only the MIME type is validated; size and
// content are left to the backend.
type Document struct {
	Path  string
	Name  string
	Size  int64
	Pages int
}

// Open validates path and returns the document. The page count is best
// effort and zero when the PDF cannot be parsed locally.
func Open(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, common.NewUserError(fmt.Sprintf("%s is a directory", filepath.Base(path)), ErrNotPDF)
	}

	mime, err := sniff(path)
	if err != nil {
		return nil, err
	}
	if mime != "application/pdf" {
		slog.Debug("Rejected file", "path", path, "mime", mime)
		return nil, common.NewUserError("Please select a PDF file.", ErrNotPDF)
	}

	doc := &Document{
		Path: path,
		Name: filepath.Base(path),
		Size: info.Size(),
	}
	if pages, err := pageCount(path); err != nil {
		slog.Debug("Could not count PDF pages", "path", path, "error", err)
	} else {
		doc.Pages = pages
	}
	return doc, nil
}

// Reader opens the file for upload.
func (d *Document) Reader() (io.ReadCloser, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", d.Name, err)
	}
	return f, nil
}

// DownloadName returns "<name without .pdf>_classificado.xlsx".
func (d *Document) DownloadName() string {
	return DownloadName(d.Name)
}

// DownloadName derives the spreadsheet name for an uploaded file name.
func DownloadName(filename string) string {
	return BaseName(filename) + DownloadSuffix
}

// BaseName strips a trailing .pdf extension, in any case.
func BaseName(filename string) string {
	if ext := filepath.Ext(filename); strings.EqualFold(ext, ".pdf") {
		return strings.TrimSuffix(filename, ext)
	}
	return filename
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return http.DetectContentType(head[:n]), nil
}

// FormatSize renders a byte count for display.
func FormatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// pageCount reads the page tree. The PDF library panics on some malformed
// inputs.
func pageCount(path string) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	return r.NumPage(), nil
}
