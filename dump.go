package ckanta

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// DumpOptions configures a dump.
type DumpOptions struct {
	Object Object
	Limit  int // number of records; 0 dumps everything after Offset
	Offset int
	Writer io.Writer
}

// Dump writes records of the object to opts.Writer as CSV. The header is the
// sorted union of all record keys; nested values are JSON-encoded. It returns
// the number of records written.
func (s *Service) Dump(ctx context.Context, opts DumpOptions) (int, error) {
	if err := opts.Object.validate(); err != nil {
		return 0, err
	}
	if opts.Writer == nil {
		return 0, ErrWriterRequired
	}

	names, err := s.listNames(ctx, opts.Object)
	if err != nil {
		return 0, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = len(names)
	}
	window := pageWindow(names, opts.Offset, limit)

	records, err := s.showAll(ctx, opts.Object, window)
	if err != nil {
		return 0, err
	}

	s.logger.DebugContext(ctx, "dump", "object", opts.Object, "total", len(names), "records", len(records))

	if err := WriteCSV(opts.Writer, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// WriteCSV writes records as CSV with a header of the sorted union of keys.
func WriteCSV(w io.Writer, records []Record) error {
	seen := make(map[string]struct{})
	var header []string
	for _, rec := range records {
		for k := range rec {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				header = append(header, k)
			}
		}
	}
	sort.Strings(header)

	cw := csv.NewWriter(w)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	row := make([]string, len(header))
	for _, rec := range records {
		for i, col := range header {
			row[i] = FormatCell(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
