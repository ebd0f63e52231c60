package datasource

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type ranks used when ordering mixed values: missing, booleans, numbers,
// strings, then everything else.
const (
	rankNull = iota
	rankBool
	rankNumber
	rankString
	rankOther
)

// CompareValues orders two document values the way the document store orders
// a field across documents.
func CompareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return compareInts(ra, rb)
	}

	switch ra {
	case rankBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		fa, _ := number(a)
		fb, _ := number(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankOther:
		return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
	default:
		return 0
	}
}

// After reports whether the record sorts strictly after the cursor.
func (c *Cursor) After(r Record, orderBy string) bool {
	if cmp := CompareValues(r.Data[orderBy], c.Value); cmp != 0 {
		return cmp > 0
	}
	return r.DocID > c.DocID
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNull
	case bool:
		return rankBool
	case string:
		return rankString
	}
	if _, ok := number(v); ok {
		return rankNumber
	}
	return rankOther
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
