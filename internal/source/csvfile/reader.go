package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"talk_enricher/internal/domain"
)

// readRows decodes a CSV-with-header stream. Quotes are escaped by
// doubling. Empty fields decode as null. Columns not listed are ignored.
func readRows[T any](r io.Reader, columns []column[T]) ([]T, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: %w", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	idx := make([]int, len(columns))
	for i, col := range columns {
		idx[i] = -1
		for _, name := range col.names {
			if p, ok := positions[name]; ok {
				idx[i] = p
				break
			}
		}
		if idx[i] < 0 && col.required {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, col.names[0])
		}
	}

	var rows []T
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}

		var row T
		for i, col := range columns {
			if idx[i] < 0 {
				continue
			}
			col.set(&row, nullable(record[idx[i]]))
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
