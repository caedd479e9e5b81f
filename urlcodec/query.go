package urlcodec

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// BuildQueryParams flattens obj into an escaped query string. Nested maps
// produce dot-joined keys ("parent.child=value"), falsy values are omitted and
// keys are emitted in sorted order so identical inputs give identical output.
// The result carries no leading '?'.
func BuildQueryParams(obj map[string]any, prefix string) string {
	pairs := make([]string, 0, len(obj))
	type frame struct {
		prefix string
		values map[string]any
	}
	stack := []frame{{prefix: prefix, values: obj}}
	for len(stack) > 0 {
		item := stack[0]
		stack = stack[1:]

		keys := make([]string, 0, len(item.values))
		for key := range item.values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var nested []frame
		for _, key := range keys {
			full := key
			if item.prefix != "" {
				full = item.prefix + "." + key
			}
			if child, ok := asMap(item.values[key]); ok {
				nested = append(nested, frame{prefix: full, values: child})
				continue
			}
			value, ok := scalar(item.values[key])
			if !ok {
				continue
			}
			pairs = append(pairs, url.QueryEscape(full)+"="+url.QueryEscape(value))
		}
		stack = append(nested, stack...)
	}
	return strings.Join(pairs, "&")
}

// GetQueryParams parses a query string into a map. Each pair is split on the
// first '='. Keys containing a dot are nested one level under the portion
// before the last dot, so "settings.profile.id=1" yields
// {"settings.profile": {"id": "1"}}. A leading path and '?' are ignored.
func GetQueryParams(path string) map[string]any {
	out := make(map[string]any)
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[idx+1:]
	}
	if idx := strings.Index(path, "#"); idx >= 0 {
		path = path[:idx]
	}
	for _, pair := range strings.Split(path, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescape(key)
		value = unescape(value)
		if key == "" {
			continue
		}

		dot := strings.LastIndex(key, ".")
		if dot <= 0 || dot == len(key)-1 {
			out[key] = value
			continue
		}
		scope, name := key[:dot], key[dot+1:]
		group, ok := out[scope].(map[string]any)
		if !ok {
			group = make(map[string]any)
			out[scope] = group
		}
		group[name] = value
	}
	return out
}

func unescape(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return value
	}
	return decoded
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = val
		}
		return out, true
	case map[string]map[string]string:
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = val
		}
		return out, true
	}
	return nil, false
}

func scalar(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		return "true", v
	case fmt.Stringer:
		s := v.String()
		return s, s != ""
	}
	rv := reflect.ValueOf(value)
	if rv.IsZero() {
		return "", false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		if rv.Len() == 0 {
			return "", false
		}
	}
	return fmt.Sprint(value), true
}
