package neo4jmirror

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func TestToInt64(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 80)
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"int64", int64(42), 42},
		{"int", 7, 7},
		{"int32", int32(-3), -3},
		{"uint64", uint64(9), 9},
		{"uint64 overflow", uint64(math.MaxUint64), math.MaxInt64},
		{"float64", float64(12), 12},
		{"big int", big.NewInt(1234), 1234},
		{"big int overflow", huge, math.MaxInt64},
		{"nil big int", (*big.Int)(nil), 0},
		{"string", "12", 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toInt64(tt.in); got != tt.want {
				t.Errorf("toInt64(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecordHelpers(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &neo4j.Record{
		Keys:   []string{"from_path", "rel", "target", "to_wikilink", "position", "to_path", "at"},
		Values: []any{"a.md", "supports", "B", "[[B]]", int64(2), nil, formatTime(at)},
	}

	rows := linkRows([]*neo4j.Record{rec})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.FromPath != "a.md" || row.Rel != "supports" || row.Target != "B" || row.ToWikilink != "[[B]]" {
		t.Errorf("unexpected row %+v", row)
	}
	if row.Position != 2 {
		t.Errorf("position = %d, want 2", row.Position)
	}
	if row.ToPath != "" {
		t.Errorf("null to_path should read as empty, got %q", row.ToPath)
	}

	got := timeFromRecord(rec, "at")
	if got == nil || !got.Equal(at) {
		t.Errorf("timeFromRecord = %v, want %v", got, at)
	}
	if timeFromRecord(rec, "missing") != nil {
		t.Error("missing key should read as nil time")
	}
	if intFromRecord(rec, "missing") != 0 {
		t.Error("missing key should read as zero")
	}
}
