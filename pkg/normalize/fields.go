package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field returns the value at a dotted path in rec. A missing key, a
// non-object intermediate or a null value yields def.
func Field(rec map[string]any, path string, def any) any {
	var cur any = rec
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		cur, ok = m[key]
		if !ok {
			return def
		}
	}
	if cur == nil {
		return def
	}
	return cur
}

// FirstField returns the first present value among paths, or def.
func FirstField(rec map[string]any, paths []string, def any) any {
	for _, p := range paths {
		if v := Field(rec, p, nil); v != nil {
			return v
		}
	}
	return def
}

// shapeError reports a field whose JSON type does not fit its column.
type shapeError struct {
	field string
	want  string
	got   any
}

func (e *shapeError) Error() string {
	return fmt.Sprintf("field %s: expected %s, got %T", e.field, e.want, e.got)
}

// stringAt reads a scalar under the first present path as a string.
// Empty strings count as absent.
func stringAt(rec map[string]any, paths []string, def string) (string, error) {
	v := FirstField(rec, paths, nil)
	if v == nil {
		return def, nil
	}
	s, ok := scalar(v)
	if !ok {
		return "", &shapeError{field: paths[0], want: "scalar", got: v}
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// stringsAt reads a list of strings. Null and missing lists are empty.
func stringsAt(rec map[string]any, path string) ([]string, error) {
	v := Field(rec, path, nil)
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &shapeError{field: path, want: "list", got: v}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, &shapeError{field: path + "[]", want: "string", got: item}
		}
		out = append(out, s)
	}
	return out, nil
}

// objectsAt reads a list of objects. Null and missing lists are empty. An
// entry that is not an object reads as an empty object, so every field of
// it takes its default.
func objectsAt(rec map[string]any, path string) ([]map[string]any, error) {
	v := Field(rec, path, nil)
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &shapeError{field: path, want: "list", got: v}
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		out = append(out, m)
	}
	return out, nil
}

func scalar(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}
