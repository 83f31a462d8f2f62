// Package csv reads flow tables from CSV files and writes classification results as CSV.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/hed1ad/nidsguard/pkg/dataset"
	nidsio "github.com/hed1ad/nidsguard/pkg/io"
)

var _ nidsio.TableReader = (*Reader)(nil)

// Reader reads a table from a CSV file.
type Reader struct {
	file      afero.File
	reader    *csv.Reader
	hasHeader bool
	headers   []string
	drop      []string
	limit     int
	skipped   int
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithHeader indicates the CSV has a header row.
func WithHeader(has bool) Option {
	return func(r *Reader) {
		r.hasHeader = has
	}
}

// WithColumns names the columns of a file without a header row. A header row, if present,
// is skipped.
func WithColumns(names ...string) Option {
	return func(r *Reader) {
		r.headers = names
	}
}

// WithDropColumns removes the named columns from the table. Names not in the file are
// ignored.
func WithDropColumns(names ...string) Option {
	return func(r *Reader) {
		r.drop = names
	}
}

// WithLimit stops after n data rows. Zero or less reads everything.
func WithLimit(n int) Option {
	return func(r *Reader) {
		r.limit = n
	}
}

// NewReader opens filename on fs.
func NewReader(fs afero.Fs, filename string, opts ...Option) (*Reader, error) {
	file, err := fs.Open(filename)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:      file,
		reader:    csv.NewReader(file),
		hasHeader: true,
	}
	r.reader.TrimLeadingSpace = true
	r.reader.FieldsPerRecord = -1

	for _, opt := range opts {
		opt(r)
	}

	if r.hasHeader {
		headers, err := r.reader.Read()
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("read header of %s: %w", filename, err)
		}
		if r.headers == nil {
			r.headers = headers
		}
	}

	return r, nil
}

// Headers returns the column names of the file, before dropping.
func (r *Reader) Headers() []string {
	return r.headers
}

// Skipped returns how many rows Read discarded because their field count did not match the
// header.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Read returns the remaining rows as a table of raw cells.
func (r *Reader) Read() (*dataset.Table, error) {
	var t *dataset.Table
	if r.headers != nil {
		var err error
		if t, err = dataset.NewTable(r.headers...); err != nil {
			return nil, err
		}
	}

	for r.limit <= 0 || t == nil || t.Len() < r.limit {
		record, err := r.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if t == nil {
			r.headers = positional(len(record))
			if t, err = dataset.NewTable(r.headers...); err != nil {
				return nil, err
			}
		}
		if len(record) != t.Width() {
			r.skipped++
			continue
		}
		if err := t.Append(record...); err != nil {
			return nil, err
		}
	}

	if t == nil {
		return nil, dataset.NewShapeError("csv", "no columns")
	}
	if r.skipped > 0 {
		log.Warn().Int("rows", r.skipped).Msg("Skipped malformed CSV rows")
	}
	return t.Drop(r.drop...), nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadFile reads a whole CSV file from fs.
func ReadFile(fs afero.Fs, filename string, opts ...Option) (*dataset.Table, error) {
	r, err := NewReader(fs, filename, opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Read()
}

func positional(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
	}
	return names
}
