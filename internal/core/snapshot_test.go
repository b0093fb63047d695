package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSnapshot(t *testing.T) {
	data := []byte(`{
		"country": [{"country_id": 1, "country": "Afghanistan", "last_update": "2006-02-15T09:44:00"}],
		"film": [{"film_id": 1, "rental_rate": 0.99, "special_features": ["Trailers", "Deleted Scenes"], "rating": null}]
	}`)

	snap, err := ParseSnapshot(data)
	if err != nil {
		t.Fatalf("ParseSnapshot() unexpected error: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("got %d tables, want 2", len(snap))
	}

	country := snap["country"][0]
	key, ok, err := country.PrimaryKey("country")
	if err != nil || !ok || key != 1 {
		t.Errorf("country key = %d, %v, %v", key, ok, err)
	}
	if name, _ := country.Text("country"); name != "Afghanistan" {
		t.Errorf("country name = %q", name)
	}

	film := snap["film"][0]
	rate, err := film.Decimal("rental_rate")
	if err != nil {
		t.Fatalf("Decimal() unexpected error: %v", err)
	}
	if s := numericString(t, rate); s != "0.99" {
		t.Errorf("rental_rate = %s, want 0.99 without float rounding", s)
	}
	features, err := film.JoinedStrings("special_features", ",")
	if err != nil || features.String != "Trailers,Deleted Scenes" {
		t.Errorf("special_features = %+v, %v", features, err)
	}
}

func TestParseSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantJSON  bool // ErrInvalidJSON
		wantTable string
		wantIndex int
	}{
		{name: "not json", input: `{"actor": [`, wantJSON: true},
		{name: "empty document", input: ``, wantJSON: true},
		{name: "trailing data", input: `{} {}`, wantJSON: true},
		{name: "top level array", input: `[{"actor_id": 1}]`, wantIndex: -1},
		{name: "table is object", input: `{"actor": {"actor_id": 1}}`, wantTable: "actor", wantIndex: -1},
		{name: "record is scalar", input: `{"actor": [{"actor_id": 1}, 7]}`, wantTable: "actor", wantIndex: 1},
		{name: "nested object field", input: `{"staff": [{"staff_id": 1, "picture": {"x": 1}}]}`, wantTable: "staff", wantIndex: 0},
		{name: "array of numbers", input: `{"film": [{"special_features": [1, 2]}]}`, wantTable: "film", wantIndex: 0},
		{name: "malformed extra table", input: `{"actor": [], "sales_by_store": {"total_sales": 1}}`, wantTable: "sales_by_store", wantIndex: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSnapshot([]byte(tt.input))
			if err == nil {
				t.Fatal("ParseSnapshot() expected error")
			}

			if tt.wantJSON {
				if !errors.Is(err, ErrInvalidJSON) {
					t.Fatalf("error = %v, want ErrInvalidJSON", err)
				}
				if errors.Is(err, ErrFormat) {
					t.Errorf("invalid JSON should not also be a format error")
				}
				return
			}

			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *FormatError", err)
			}
			if fe.Table != tt.wantTable || fe.Index != tt.wantIndex {
				t.Errorf("FormatError{Table: %q, Index: %d}, want {%q, %d}", fe.Table, fe.Index, tt.wantTable, tt.wantIndex)
			}
		})
	}
}

func TestReadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sakila.json")
	content := "\xEF\xBB\xBF" + `{"language": [{"language_id": 1, "name": "English", "last_update": "2006-02-15T10:02:19"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	snap, size, err := ReadSnapshot(path, 1<<20)
	if err != nil {
		t.Fatalf("ReadSnapshot() unexpected error: %v", err)
	}
	if len(snap["language"]) != 1 {
		t.Errorf("got %d languages, want 1", len(snap["language"]))
	}
	if want := int64(len(content) - 3); size != want {
		t.Errorf("ReadSnapshot() size = %d, want %d (BOM excluded)", size, want)
	}

	_, _, err = ReadSnapshot(path, 16)
	if !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("small limit error = %v, want ErrInputTooLarge", err)
	}

	_, _, err = ReadSnapshot(filepath.Join(dir, "missing.json"), 0)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want not exist", err)
	}
	if err != nil && strings.Contains(err.Error(), "format") {
		t.Errorf("missing file should not read as a format error: %v", err)
	}
}
