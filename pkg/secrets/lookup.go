package secrets

import (
	"reflect"
	"strconv"
	"strings"
)

// SplitPath turns a dotted path into its segments.
func SplitPath(path string) []string {
	return strings.Split(path, ".")
}

// lookup resolves keys against obj. Descent stops with def as soon as a
// segment is missing or segments remain on a value that is not a container.
func lookup(obj any, keys []string, def any) any {
	if len(keys) == 0 {
		return def
	}
	v, ok := child(obj, keys[0])
	if !ok {
		return def
	}
	if len(keys) == 1 {
		return v
	}
	return lookup(v, keys[1:], def)
}

// child returns the element of a string-keyed map or a slice addressed by key.
func child(obj any, key string) (any, bool) {
	switch c := obj.(type) {
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case map[string]string:
		v, ok := c[key]
		return v, ok
	case []any:
		i, ok := index(key, len(c))
		if !ok {
			return nil, false
		}
		return c[i], true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Slice, reflect.Array:
		i, ok := index(key, rv.Len())
		if !ok {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

func index(key string, n int) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || strconv.Itoa(i) != key || i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
