package metadata

import (
	"fmt"
	"strconv"
	"strings"
)

// Sanitize normalizes raw input into a Patch: strings are trimmed and
// truncated, tags are trimmed, truncated, de-duplicated case-insensitively
// (first occurrence wins) and capped. Fields outside the allow-list are
// dropped. A field that is null or empty after trimming becomes a clear.
func (p *Pipeline) Sanitize(raw map[string]any) Patch {
	var patch Patch

	for _, f := range textFields {
		v, present := raw[f.name]
		if !present {
			continue
		}
		pf := f.patch(&patch)
		pf.Present = true
		if v == nil {
			continue
		}
		pf.Value = truncate(strings.TrimSpace(coerceString(v)), f.max(p.limits))
	}

	if v, present := raw[FieldTags]; present {
		if v == nil {
			patch.Tags.Present = true
		} else if list, ok := asList(v); ok {
			patch.Tags.Present = true
			patch.Tags.Value = p.sanitizeTags(list)
		}
	}

	return patch
}

func (p *Pipeline) sanitizeTags(list []any) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, t := range list {
		s, ok := t.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		s = truncate(s, p.limits.MaxTagLength)
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == p.limits.MaxTags {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// asList accepts both decoded JSON arrays and Go string slices.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
