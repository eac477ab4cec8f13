package search

import "strings"

// Record is the decoded source of one stored document.
type Record map[string]any

// Lookup returns the value at a dot-separated path, descending into nested objects.
// A flat key equal to the whole path wins over the nested form.
func (r Record) Lookup(path string) (any, bool) {
	if v, ok := r[path]; ok {
		return v, true
	}
	var current any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		obj, ok := asObject(current)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set stores v at a dot-separated path, creating intermediate objects.
func (r Record) Set(path string, v any) {
	parts := strings.Split(path, ".")
	obj := map[string]any(r)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asObject(obj[part])
		if !ok {
			next = map[string]any{}
			obj[part] = next
		}
		obj = next
	}
	obj[parts[len(parts)-1]] = v
}

func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case Record:
		return o, true
	default:
		return nil, false
	}
}
