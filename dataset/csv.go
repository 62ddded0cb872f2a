package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// NameColumn is the header of the entity name column.
const NameColumn = "name"

// LoadCSVFile loads a dataset from a CSV file with a header row.
func LoadCSVFile(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("open %s: %w", path, err)}
	}
	defer f.Close()
	return LoadCSV(f, opts...)
}

// LoadCSV reads a header row followed by one record per entity. The header
// must contain a name column and all six attribute columns, in any order and
// any case; other columns are ignored.
func LoadCSV(r io.Reader, opts ...Option) (*Dataset, error) {
	o := newOptions(opts)
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Err: errors.New("empty input")}
	}
	if err != nil {
		return nil, &LoadError{Err: fmt.Errorf("read header: %w", err)}
	}
	nameCol, attrCols, err := resolveHeader(header)
	if err != nil {
		return nil, err
	}

	var entities []Entity
	for record := 1; ; record++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &LoadError{Record: record, Err: err}
		}
		entity, err := parseRow(row, nameCol, attrCols, record, o.strict)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return New(entities, opts...)
}

func resolveHeader(header []string) (int, [Dims]int, error) {
	nameCol := -1
	var attrCols [Dims]int
	for i := range attrCols {
		attrCols[i] = -1
	}
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if col == NameColumn {
			if nameCol >= 0 {
				return 0, attrCols, &LoadError{Field: col, Err: errors.New("duplicate column")}
			}
			nameCol = i
			continue
		}
		if a, err := ParseAttribute(col); err == nil {
			if attrCols[a] >= 0 {
				return 0, attrCols, &LoadError{Field: col, Err: errors.New("duplicate column")}
			}
			attrCols[a] = i
		}
	}
	if nameCol < 0 {
		return 0, attrCols, &LoadError{Field: NameColumn, Err: errors.New("missing column")}
	}
	for a, col := range attrCols {
		if col < 0 {
			return 0, attrCols, &LoadError{Field: Attribute(a).String(), Err: errors.New("missing column")}
		}
	}
	return nameCol, attrCols, nil
}

func parseRow(row []string, nameCol int, attrCols [Dims]int, record int, strict bool) (Entity, error) {
	var entity Entity
	if nameCol >= len(row) {
		return entity, &LoadError{Record: record, Field: NameColumn, Err: errors.New("missing field")}
	}
	entity.Name = strings.TrimSpace(row[nameCol])
	for a, col := range attrCols {
		field := Attribute(a).String()
		if col >= len(row) {
			return entity, &LoadError{Record: record, Field: field, Err: errors.New("missing field")}
		}
		raw := strings.TrimSpace(row[col])
		if raw == "" {
			return entity, &LoadError{Record: record, Field: field, Err: errors.New("missing field")}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return entity, &LoadError{Record: record, Field: field, Err: fmt.Errorf("non-numeric value %q", raw)}
		}
		if err := checkValue(v, strict); err != nil {
			return entity, &LoadError{Record: record, Field: field, Err: err}
		}
		entity.Attributes[a] = v
	}
	return entity, nil
}
