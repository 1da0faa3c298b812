package datasource

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Catalog queries return loosely typed values; these helpers normalize them
// across drivers (pgx returns native Go types, database/sql drivers often []byte).

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func asNullableString(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	return &s
}

func asInt(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return int64(t)
	case float64:
		return int64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string, []byte:
		n, err := strconv.ParseFloat(strings.TrimSpace(asString(t)), 64)
		if err != nil {
			return 0
		}
		return int64(n)
	default:
		n, err := strconv.ParseFloat(fmt.Sprint(t), 64)
		if err != nil {
			return 0
		}
		return int64(n)
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string, []byte:
		switch strings.ToUpper(strings.TrimSpace(asString(t))) {
		case "YES", "Y", "TRUE", "T", "1":
			return true
		}
		return false
	default:
		return asInt(t) != 0
	}
}

// normalizeValue converts a driver value into its QueryResult form:
// nil becomes Null, valid UTF-8 byte slices become strings.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return Null
	case []byte:
		if utf8.Valid(t) {
			return string(t)
		}
		b := make([]byte, len(t))
		copy(b, t)
		return b
	default:
		return t
	}
}
