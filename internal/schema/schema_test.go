package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSchema(t *testing.T) {
	s := Default()

	if len(s.Entities) != 15 {
		t.Fatalf("len(Entities) = %d, want 15", len(s.Entities))
	}

	city, err := s.Entity("City")
	if err != nil {
		t.Fatalf("Entity(City) error = %v", err)
	}
	want := []string{"id", "city", "last_update", "country_id"}
	got := city.Columns()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("City.Columns() = %v, want %v", got, want)
	}

	customer, _ := s.Entity("Customer")
	var hasActive, hasActiveCode bool
	for _, a := range customer.Attributes {
		switch a.Name {
		case "active":
			hasActive = a.Type == TypeBool
		case "active_code":
			hasActiveCode = a.Type == TypeInt32 && a.Optional
		}
	}
	if !hasActive || !hasActiveCode {
		t.Errorf("customer must declare bool active and optional int32 active_code")
	}
}

func TestEntityUnknown(t *testing.T) {
	_, err := Default().Entity("Spaceship")
	if !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("Entity() error = %v, want ErrUnknownEntity", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "unknown type",
			input:   "[[entity]]\nname=\"A\"\ntable=\"a\"\n[[entity.attribute]]\nname=\"x\"\ntype=\"blob\"\n",
			wantErr: "unknown attribute type",
		},
		{
			name:    "unknown target",
			input:   "[[entity]]\nname=\"A\"\ntable=\"a\"\n[[entity.relationship]]\nname=\"b\"\ntarget=\"B\"\n",
			wantErr: "unknown target B",
		},
		{
			name:    "duplicate entity",
			input:   "[[entity]]\nname=\"A\"\ntable=\"a\"\n[[entity]]\nname=\"A\"\ntable=\"b\"\n",
			wantErr: "declared twice",
		},
		{
			name:    "missing table",
			input:   "[[entity]]\nname=\"A\"\n",
			wantErr: "name and table are required",
		},
		{
			name:    "unknown key",
			input:   "[[entity]]\nname=\"A\"\ntable=\"a\"\ncolour=\"red\"\n",
			wantErr: "unknown keys",
		},
		{
			name:    "relationship column clashes with attribute",
			input:   "[[entity]]\nname=\"A\"\ntable=\"a\"\n[[entity.attribute]]\nname=\"a_id\"\ntype=\"int64\"\n[[entity.relationship]]\nname=\"a\"\ntarget=\"A\"\n",
			wantErr: "duplicate column a_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.toml")
	if err := os.WriteFile(path, DefaultSource(), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := s.Entity("Payment"); err != nil {
		t.Errorf("Entity(Payment) error = %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() of missing file expected error")
	}
}

func TestCreateStatements(t *testing.T) {
	s := Default()

	sqlite := s.CreateStatements(SQLite)
	if len(sqlite) != len(s.Entities) {
		t.Fatalf("sqlite statements = %d, want %d", len(sqlite), len(s.Entities))
	}
	var staff string
	for _, stmt := range sqlite {
		if strings.HasPrefix(stmt, `CREATE TABLE "staff"`) {
			staff = stmt
		}
	}
	if !strings.Contains(staff, `"store_id" INTEGER NOT NULL REFERENCES "store" ("id") DEFERRABLE INITIALLY DEFERRED`) {
		t.Errorf("staff DDL missing deferred store reference: %s", staff)
	}

	pg := s.CreateStatements(Postgres)
	var alters int
	for _, stmt := range pg {
		if strings.HasPrefix(stmt, "ALTER TABLE") {
			alters++
		}
		if strings.HasPrefix(stmt, `CREATE TABLE "rental"`) &&
			!strings.Contains(stmt, `"return_date" TIMESTAMPTZ,`) {
			t.Errorf("rental DDL should have nullable TIMESTAMPTZ return_date: %s", stmt)
		}
	}
	var rels int
	for _, e := range s.Entities {
		rels += len(e.Relationships)
	}
	if alters != rels {
		t.Errorf("postgres ALTER statements = %d, want %d", alters, rels)
	}
}

func TestAttributeTypeString(t *testing.T) {
	if TypeDecimal.String() != "decimal" {
		t.Errorf("TypeDecimal.String() = %q", TypeDecimal.String())
	}
	if AttributeType(99).String() != "AttributeType(99)" {
		t.Errorf("unknown type String() = %q", AttributeType(99).String())
	}
}
