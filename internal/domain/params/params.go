// Package params rewrites externally supplied parameter names into internal field names.
package params

import (
	"net/url"
	"sort"
	"strings"
)

// Normalize returns a copy of values where every dotted key (d.docs.limit)
// is renamed to its underscore form (d_docs_limit).
// If both forms are present, the dotted form is applied last and wins.
func Normalize(values url.Values) url.Values {
	out := make(url.Values, len(values))
	var dotted []string
	for k, v := range values {
		if strings.Contains(k, ".") {
			dotted = append(dotted, k)
			continue
		}
		out[k] = append([]string(nil), v...)
	}

	// Stable order so two dotted spellings of one key resolve the same way every time.
	sort.Strings(dotted)
	for _, k := range dotted {
		out[Key(k)] = append([]string(nil), values[k]...)
	}
	return out
}

// Flatten keeps the first value of every key, the way form decoders read single-valued params.
func Flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) == 0 {
			continue
		}
		out[k] = v[0]
	}
	return out
}

// Key rewrites a single dotted name.
func Key(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
