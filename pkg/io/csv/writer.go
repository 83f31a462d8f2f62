package csv

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/spf13/afero"

	nidsio "github.com/hed1ad/nidsguard/pkg/io"
)

var _ nidsio.Writer = (*Writer)(nil)

// Writer writes results as CSV rows under a fixed header.
type Writer struct {
	closer io.Closer
	writer *csv.Writer
	header bool
}

// NewWriter writes results to w. Close flushes but does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{writer: csv.NewWriter(w)}
}

// CreateWriter creates or truncates filename on fs.
func CreateWriter(fs afero.Fs, filename string) (*Writer, error) {
	file, err := fs.Create(filename)
	if err != nil {
		return nil, err
	}
	w := NewWriter(file)
	w.closer = file
	return w, nil
}

// Write outputs a single result.
func (w *Writer) Write(result nidsio.Result) error {
	if !w.header {
		if err := w.writer.Write([]string{"row", "label", "attack", "normal", "flow"}); err != nil {
			return err
		}
		w.header = true
	}
	return w.writer.Write([]string{
		strconv.Itoa(result.Row),
		strconv.Itoa(result.Label),
		strconv.Itoa(result.Attack),
		strconv.Itoa(result.Normal),
		result.Flow,
	})
}

// WriteAll outputs multiple results.
func (w *Writer) WriteAll(results []nidsio.Result) error {
	for _, r := range results {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes buffered rows and closes the file opened by CreateWriter.
func (w *Writer) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
