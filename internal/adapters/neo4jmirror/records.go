package neo4jmirror

import (
	"math"
	"math/big"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"notegraph/internal/domain"
)

// toInt64 normalises every numeric shape a count or position can take at
// the driver boundary.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(n)
	case float64:
		return int64(n)
	case *big.Int:
		if n == nil {
			return 0
		}
		if !n.IsInt64() {
			return math.MaxInt64
		}
		return n.Int64()
	default:
		return 0
	}
}

func intFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	return int(toInt64(val))
}

func stringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

func timeFromRecord(record *neo4j.Record, key string) *time.Time {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	return parseTime(val)
}

func parseTime(val any) *time.Time {
	switch v := val.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil
		}
		return &t
	case time.Time:
		return &v
	default:
		return nil
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func linkRows(records []*neo4j.Record) []domain.LinkRow {
	rows := make([]domain.LinkRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, domain.LinkRow{
			FromPath:   stringFromRecord(rec, "from_path"),
			Rel:        stringFromRecord(rec, "rel"),
			Target:     stringFromRecord(rec, "target"),
			ToWikilink: stringFromRecord(rec, "to_wikilink"),
			Position:   intFromRecord(rec, "position"),
			ToPath:     stringFromRecord(rec, "to_path"),
		})
	}
	return rows
}
