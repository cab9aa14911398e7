// Package dataset reads labeled training records from CSV files.
package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/okian/cardio/internal/domain/model"
	"github.com/okian/cardio/internal/domain/schema"
)

const cancelCheckEvery = 512

// Load opens path and reads every labeled record from it.
func Load(ctx context.Context, path string) ([]model.Labeled, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoData, path)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(ctx, f)
}

// Read parses CSV from r. The first row is a header; columns are matched by
// name in any order and unknown columns are ignored.
func Read(ctx context.Context, r io.Reader) ([]model.Labeled, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []model.Labeled
	for {
		if len(rows)%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		row, err := parseRow(cells, index)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, name := range append(schema.Fields(), schema.Target) {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return index, nil
}

func parseRow(cells []string, index map[string]int) (model.Labeled, error) {
	raw := make(map[string]any, len(index))
	for _, name := range schema.Fields() {
		raw[name] = json.Number(strings.TrimSpace(cells[index[name]]))
	}
	rec, err := model.Decode(raw)
	if err != nil {
		return model.Labeled{}, err
	}
	target, err := parseTarget(cells[index[schema.Target]])
	if err != nil {
		return model.Labeled{}, err
	}
	return model.Labeled{Record: rec, Target: target}, nil
}

func parseTarget(cell string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || (f != 0 && f != 1) {
		return 0, fmt.Errorf("%s: %w: %q", schema.Target, ErrInvalidTarget, cell)
	}
	return int(f), nil
}
