package loader

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ValueField holds scalar documents that are turned into records.
const ValueField = "value"

// Records flattens parsed documents into records.
//
// root is a dotted path selecting the record list inside each document
// ("d", "data.items"). Without a root, an array document contributes its
// elements, and an object document whose only list-of-objects field is the
// record list contributes that list; any other object is one record. Scalars
// become {"value": v}.
func Records(docs []any, root string) ([]map[string]any, error) {
	var out []map[string]any
	for i, doc := range docs {
		node := doc
		if root != "" {
			var ok bool
			node, ok = lookup(doc, root)
			if !ok {
				return nil, fmt.Errorf("document %d: root %q not found", i, root)
			}
		} else if list, ok := soleList(doc); ok {
			node = list
		}
		if list, ok := node.([]any); ok {
			for _, el := range list {
				out = append(out, toRecord(el))
			}
			continue
		}
		out = append(out, toRecord(node))
	}
	return out, nil
}

// LoadRecords reads path and flattens it with Records.
func LoadRecords(path, root string) ([]map[string]any, error) {
	docs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Records(docs, root)
}

// Fields returns the sorted union of field names across records.
func Fields(records []map[string]any) []string {
	seen := map[string]bool{}
	var fields []string
	for _, r := range records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	sort.Strings(fields)
	return fields
}

func toRecord(v any) map[string]any {
	if m, ok := Normalize(v).(map[string]any); ok {
		return m
	}
	return map[string]any{ValueField: Normalize(v)}
}

func lookup(doc any, path string) (any, bool) {
	node := Normalize(doc)
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = m[part]; !ok {
			return nil, false
		}
	}
	return node, true
}

func soleList(doc any) ([]any, bool) {
	m, ok := Normalize(doc).(map[string]any)
	if !ok {
		return nil, false
	}
	var found []any
	for _, v := range m {
		list, ok := v.([]any)
		if !ok || len(list) == 0 {
			continue
		}
		if _, isObj := list[0].(map[string]any); !isObj {
			continue
		}
		if found != nil {
			return nil, false
		}
		found = list
	}
	return found, found != nil
}

// Normalize converts typed maps and slices (map[any]any, []string, ...) to
// map[string]any and []any, recursively, so records can be templated and
// filtered uniformly.
func Normalize(node any) any {
	return normalize(node, 0)
}

const maxDepth = 64

func normalize(node any, depth int) any {
	if depth > maxDepth || node == nil {
		return node
	}
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			v[k] = normalize(val, depth+1)
		}
		return v
	case []any:
		for i, val := range v {
			v[i] = normalize(val, depth+1)
		}
		return v
	case string, bool, float64, int, int64:
		return v
	}

	rv := reflect.ValueOf(node)
	//exhaustive:ignore // only containers need converting
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			key := fmt.Sprintf("%v", k.Interface())
			if k.Kind() == reflect.String {
				key = k.String()
			}
			out[key] = normalize(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return node
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalize(rv.Index(i).Interface(), depth+1)
		}
		return out
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface(), depth+1)
	default:
		return node
	}
}
