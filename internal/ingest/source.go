package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Source is one CSV input with its header resolved to a ColumnMap.
type Source struct {
	reader  *csv.Reader
	columns ColumnMap
	closer  io.Closer
}

// OpenSource opens a CSV file and resolves its header.
func OpenSource(path string, synonyms Synonyms, required []string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := NewSource(f, synonyms, required)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	src.closer = f
	return src, nil
}

// NewSource wraps a reader holding CSV data. The first record is
// consumed as the header.
func NewSource(r io.Reader, synonyms Synonyms, required []string) (*Source, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := ResolveColumns(header, synonyms, required)
	if err != nil {
		return nil, err
	}

	return &Source{reader: cr, columns: cols}, nil
}

// Next returns the next data row, or io.EOF when the source is drained.
func (s *Source) Next() ([]string, error) {
	return s.reader.Read()
}

// Field resolves a canonical field in a row.
func (s *Source) Field(row []string, name string) string {
	return s.columns.Field(row, name)
}

func (s *Source) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
