package core

// convert.go is the scalar coercion layer: typed accessors that project a
// loosely typed JSON record onto destination types.
//
// Each accessor owns its policy for absent values and type mismatches:
//   - required accessors (Text, Int, Decimal, Timestamp, ...) fail when the
//     field is missing or null
//   - Opt* accessors return an invalid pgtype value for missing or null
//     fields but still fail on a value of the wrong type
//   - OptBool falls back to false for anything that is not a boolean
//
// All timestamps are parsed in UTC regardless of the process time zone.

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Timestamp layouts, most precise first. The fractional layout accepts any
// number of fractional digits (the data has two to six).
const (
	FractionalLayout  = "2006-01-02T15:04:05.999999999"
	WholeSecondLayout = "2006-01-02T15:04:05"

	// calendarNoon is appended to date-only values, which carry no time of day.
	calendarNoon = "T12:00:00"
)

var timestampLayouts = []string{FractionalLayout, WholeSecondLayout}

// jsonNumber matches number literals from both encoding/json and go-json.
type jsonNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

func (r Record) lookup(field string) (any, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func missingField(field string) error {
	return &CoercionError{Field: field, Reason: "required field is missing"}
}

func typeMismatch(field string, v any, want string) error {
	return &CoercionError{Field: field, Value: v, Reason: fmt.Sprintf("expected %s, got %T", want, v)}
}

// Text returns the trimmed string value of a required field.
func (r Record) Text(field string) (string, error) {
	v, ok := r.lookup(field)
	if !ok {
		return "", missingField(field)
	}
	s, ok := v.(string)
	if !ok {
		return "", typeMismatch(field, v, "string")
	}
	return strings.TrimSpace(s), nil
}

// OptText returns the trimmed string value, or an invalid Text when the
// field is missing or null.
func (r Record) OptText(field string) (pgtype.Text, error) {
	if _, ok := r.lookup(field); !ok {
		return pgtype.Text{}, nil
	}
	s, err := r.Text(field)
	if err != nil {
		return pgtype.Text{}, err
	}
	return pgtype.Text{String: s, Valid: true}, nil
}

// Int64 returns an integral number field.
func (r Record) Int64(field string) (int64, error) {
	v, ok := r.lookup(field)
	if !ok {
		return 0, missingField(field)
	}
	i, ok := toInt64(v)
	if !ok {
		return 0, typeMismatch(field, v, "integer")
	}
	return i, nil
}

// Int returns an integral number field as int.
func (r Record) Int(field string) (int, error) {
	i, err := r.Int64(field)
	return int(i), err
}

// Int32 returns an integral number field that must fit in 32 bits.
func (r Record) Int32(field string) (int32, error) {
	i, err := r.Int64(field)
	if err != nil {
		return 0, err
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return 0, &CoercionError{Field: field, Value: i, Reason: "value out of int32 range"}
	}
	return int32(i), nil
}

// OptInt32 returns an invalid Int4 when the field is missing or null.
func (r Record) OptInt32(field string) (pgtype.Int4, error) {
	if _, ok := r.lookup(field); !ok {
		return pgtype.Int4{}, nil
	}
	i, err := r.Int32(field)
	if err != nil {
		return pgtype.Int4{}, err
	}
	return pgtype.Int4{Int32: i, Valid: true}, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case jsonNumber:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// Decimal returns a fixed-precision value. Number literals convert exactly;
// floats convert through their shortest decimal representation.
func (r Record) Decimal(field string) (pgtype.Numeric, error) {
	v, ok := r.lookup(field)
	if !ok {
		return pgtype.Numeric{}, missingField(field)
	}

	var literal string
	switch n := v.(type) {
	case pgtype.Numeric:
		if n.Valid {
			return n, nil
		}
		return pgtype.Numeric{}, missingField(field)
	case jsonNumber:
		literal = n.String()
	case float64:
		literal = strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		literal = strconv.FormatFloat(float64(n), 'f', -1, 32)
	case int:
		literal = strconv.Itoa(n)
	case int64:
		literal = strconv.FormatInt(n, 10)
	default:
		return pgtype.Numeric{}, typeMismatch(field, v, "decimal")
	}

	var d pgtype.Numeric
	err := d.Scan(literal)
	if err != nil {
		// Scan has no exponent support; "1e2" and "4.99E0" are valid JSON.
		if e, ok := exponentNumeric(literal); ok {
			d, err = e, nil
		}
	}
	if err != nil || !d.Valid || d.NaN || d.InfinityModifier != pgtype.Finite {
		return pgtype.Numeric{}, &CoercionError{Field: field, Value: v, Reason: "unparseable decimal", Err: err}
	}
	return d, nil
}

// exponentNumeric converts a literal such as "-2.5e-3" exactly, by folding the
// mantissa's fractional digits into the exponent.
func exponentNumeric(literal string) (pgtype.Numeric, bool) {
	i := strings.IndexAny(literal, "eE")
	if i < 0 {
		return pgtype.Numeric{}, false
	}
	mantissa := literal[:i]
	exp, err := strconv.ParseInt(literal[i+1:], 10, 32)
	if err != nil {
		return pgtype.Numeric{}, false
	}
	if dot := strings.IndexByte(mantissa, '.'); dot >= 0 {
		exp -= int64(len(mantissa) - dot - 1)
		mantissa = mantissa[:dot] + mantissa[dot+1:]
	}
	if mantissa == "" || mantissa == "-" || exp < math.MinInt32 || exp > math.MaxInt32 {
		return pgtype.Numeric{}, false
	}
	n, ok := new(big.Int).SetString(mantissa, 10)
	if !ok {
		return pgtype.Numeric{}, false
	}
	return pgtype.Numeric{Int: n, Exp: int32(exp), Valid: true}, true
}

// ParseTimestamp parses s with the fractional layout first, then whole seconds.
func ParseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Timestamp returns a required UTC timestamp. An unparseable string is an
// error; there is no fallback value.
func (r Record) Timestamp(field string) (time.Time, error) {
	v, ok := r.lookup(field)
	if !ok {
		return time.Time{}, missingField(field)
	}
	switch s := v.(type) {
	case time.Time:
		return s.UTC(), nil
	case string:
		t, err := ParseTimestamp(s)
		if err != nil {
			return time.Time{}, &CoercionError{Field: field, Value: s, Reason: "could not parse date", Err: err}
		}
		return t, nil
	default:
		return time.Time{}, typeMismatch(field, v, "timestamp string")
	}
}

// OptTimestamp returns an invalid Timestamptz when the field is missing or null.
func (r Record) OptTimestamp(field string) (pgtype.Timestamptz, error) {
	if _, ok := r.lookup(field); !ok {
		return pgtype.Timestamptz{}, nil
	}
	t, err := r.Timestamp(field)
	if err != nil {
		return pgtype.Timestamptz{}, err
	}
	return pgtype.Timestamptz{Time: t, Valid: true}, nil
}

// CalendarDate parses a date-only value ("2006-02-14") as noon UTC on that day.
func (r Record) CalendarDate(field string) (time.Time, error) {
	v, ok := r.lookup(field)
	if !ok {
		return time.Time{}, missingField(field)
	}
	switch s := v.(type) {
	case time.Time:
		return s.UTC(), nil
	case string:
		t, err := time.ParseInLocation(WholeSecondLayout, strings.TrimSpace(s)+calendarNoon, time.UTC)
		if err != nil {
			return time.Time{}, &CoercionError{Field: field, Value: s, Reason: "could not parse calendar date", Err: err}
		}
		return t, nil
	default:
		return time.Time{}, typeMismatch(field, v, "date string")
	}
}

// JoinedStrings flattens an array of strings into one sep-joined Text.
// A missing or null field yields an invalid Text.
func (r Record) JoinedStrings(field, sep string) (pgtype.Text, error) {
	v, ok := r.lookup(field)
	if !ok {
		return pgtype.Text{}, nil
	}

	var parts []string
	switch list := v.(type) {
	case []string:
		parts = list
	case []any:
		parts = make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return pgtype.Text{}, &CoercionError{Field: field, Value: item,
					Reason: fmt.Sprintf("element %d: expected string, got %T", i, item)}
			}
			parts = append(parts, s)
		}
	default:
		return pgtype.Text{}, typeMismatch(field, v, "array of strings")
	}

	return pgtype.Text{String: strings.Join(parts, sep), Valid: true}, nil
}

// OptBool returns the boolean value, or false for anything else.
func (r Record) OptBool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// PrimaryKey reads the table's "<table>_id" field. ok is false when the
// record carries no key.
func (r Record) PrimaryKey(table string) (key int, ok bool, err error) {
	field := table + "_id"
	if _, present := r.lookup(field); !present {
		return 0, false, nil
	}
	key, err = r.Int(field)
	if err != nil {
		return 0, false, err
	}
	return key, true, nil
}

// FieldReader wraps a Record and keeps the first coercion error, so fill
// functions can read many fields and check once.
//
//	f := core.Fields(rec)
//	city.City = f.Text("city")
//	city.LastUpdate = f.Timestamp("last_update")
//	if err := f.Err(); err != nil { ... }
type FieldReader struct {
	rec Record
	err error
}

// Fields returns a FieldReader over rec.
func Fields(rec Record) *FieldReader {
	return &FieldReader{rec: rec}
}

func read[T any](f *FieldReader, fn func(string) (T, error), field string) T {
	var zero T
	if f.err != nil {
		return zero
	}
	v, err := fn(field)
	if err != nil {
		f.err = err
		return zero
	}
	return v
}

func (f *FieldReader) Text(field string) string { return read(f, f.rec.Text, field) }
func (f *FieldReader) OptText(field string) pgtype.Text {
	return read(f, f.rec.OptText, field)
}
func (f *FieldReader) Int(field string) int     { return read(f, f.rec.Int, field) }
func (f *FieldReader) Int32(field string) int32 { return read(f, f.rec.Int32, field) }
func (f *FieldReader) OptInt32(field string) pgtype.Int4 {
	return read(f, f.rec.OptInt32, field)
}
func (f *FieldReader) Decimal(field string) pgtype.Numeric {
	return read(f, f.rec.Decimal, field)
}
func (f *FieldReader) Timestamp(field string) time.Time {
	return read(f, f.rec.Timestamp, field)
}
func (f *FieldReader) OptTimestamp(field string) pgtype.Timestamptz {
	return read(f, f.rec.OptTimestamp, field)
}
func (f *FieldReader) CalendarDate(field string) time.Time {
	return read(f, f.rec.CalendarDate, field)
}

// JoinedStrings is Record.JoinedStrings with a sticky error.
func (f *FieldReader) JoinedStrings(field, sep string) pgtype.Text {
	return read(f, func(name string) (pgtype.Text, error) {
		return f.rec.JoinedStrings(name, sep)
	}, field)
}

func (f *FieldReader) OptBool(field string) bool { return f.rec.OptBool(field) }

// Err returns the first error encountered.
func (f *FieldReader) Err() error { return f.err }
