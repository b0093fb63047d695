package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

// ReadSnapshot reads and decodes the snapshot file at path. maxBytes bounds
// the file size; zero disables the limit. It also returns the number of
// document bytes read, BOM excluded.
//
// Errors: read failures (including ErrInputTooLarge) are returned as is,
// malformed JSON matches ErrInvalidJSON, and a document of the wrong shape
// is a *FormatError.
func ReadSnapshot(path string, maxBytes int64) (Snapshot, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return DecodeSnapshot(f, maxBytes)
}

// DecodeSnapshot reads r to the end and decodes it. The whole document is
// held in memory.
func DecodeSnapshot(r io.Reader, maxBytes int64) (Snapshot, int64, error) {
	cr := WrapForDecoding(r, maxBytes)
	data, err := io.ReadAll(cr)
	if err != nil {
		return nil, cr.BytesRead, fmt.Errorf("read snapshot: %w", err)
	}
	snap, err := ParseSnapshot(data)
	return snap, cr.BytesRead, err
}

// ParseSnapshot decodes a snapshot document. Numbers are kept as number
// literals so integers and decimals convert without float rounding.
func ParseSnapshot(data []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidJSON)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after top-level value", ErrInvalidJSON)
	}

	return shapeSnapshot(doc)
}

// shapeSnapshot checks that doc is an object of arrays of records and
// converts it. Every table is checked, including ones no loader reads.
// Tables are checked in name order so errors are stable.
func shapeSnapshot(doc any) (Snapshot, error) {
	top, ok := doc.(map[string]any)
	if !ok {
		return nil, &FormatError{Index: -1, Reason: fmt.Sprintf("top-level value must be an object of tables, got %s", jsonKind(doc))}
	}

	names := make([]string, 0, len(top))
	for name := range top {
		names = append(names, name)
	}
	sort.Strings(names)

	snap := make(Snapshot, len(top))
	for _, name := range names {
		items, ok := top[name].([]any)
		if !ok {
			return nil, &FormatError{Table: name, Index: -1, Reason: fmt.Sprintf("expected an array of records, got %s", jsonKind(top[name]))}
		}

		records := make([]Record, len(items))
		for i, item := range items {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, &FormatError{Table: name, Index: i, Reason: fmt.Sprintf("record must be an object, got %s", jsonKind(item))}
			}
			if err := checkFields(name, i, obj); err != nil {
				return nil, err
			}
			records[i] = Record(obj)
		}
		snap[name] = records
	}
	return snap, nil
}

// checkFields allows scalars, null, and arrays of strings.
func checkFields(table string, index int, obj map[string]any) error {
	for field, v := range obj {
		switch val := v.(type) {
		case nil, string, bool, json.Number, float64:
		case []any:
			for j, elem := range val {
				if _, ok := elem.(string); !ok {
					return &FormatError{Table: table, Index: index,
						Reason: fmt.Sprintf("field %s element %d must be a string, got %s", field, j, jsonKind(elem))}
				}
			}
		default:
			return &FormatError{Table: table, Index: index,
				Reason: fmt.Sprintf("field %s must be a scalar or an array of strings, got %s", field, jsonKind(v))}
		}
	}
	return nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
