package metadata

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SizeResult is the outcome of CheckSize.
type SizeResult struct {
	Valid bool `json:"valid"`
	Size  int  `json:"size"`
	Limit int  `json:"limit"`
}

// Encode flattens m into the store's string-to-string map. Tags are stored
// as JSON array text. Empty fields are omitted so that an absent key always
// means "never set".
func Encode(m Metadata) map[string]string {
	out := make(map[string]string, 4)
	for _, f := range textFields {
		if v := *f.value(&m); v != "" {
			out[f.name] = v
		}
	}
	if len(m.Tags) > 0 {
		out[FieldTags] = encodeTags(m.Tags)
	}
	return out
}

// Decode reverses Encode. Keys are matched case-insensitively since S3
// gateways canonicalize header names. A tags value that is not a JSON string
// array decodes as no tags; bad stored data must never block reads.
func Decode(stored map[string]string) Metadata {
	var m Metadata
	if len(stored) == 0 {
		return m
	}

	lower := make(map[string]string, len(stored))
	for k, v := range stored {
		lower[strings.ToLower(k)] = v
	}

	for _, f := range textFields {
		if v := lower[f.name]; v != "" {
			*f.value(&m) = v
		}
	}

	if raw := lower[FieldTags]; raw != "" {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil && len(tags) > 0 {
			m.Tags = tags
		}
	}
	return m
}

// CheckSize measures the UTF-8 byte length of m's encoded JSON form.
func (p *Pipeline) CheckSize(m Metadata) SizeResult {
	size := EncodedSize(m)
	return SizeResult{
		Valid: size <= p.limits.MaxBytes,
		Size:  size,
		Limit: p.limits.MaxBytes,
	}
}

// EncodedSize returns len(json(Encode(m))).
func EncodedSize(m Metadata) int {
	b, err := marshalNoEscape(Encode(m))
	if err != nil {
		return 0
	}
	return len(b)
}

func encodeTags(tags []string) string {
	b, err := marshalNoEscape(tags)
	if err != nil {
		return ""
	}
	return string(b)
}

// marshalNoEscape is json.Marshal without HTML escaping, so "<" costs one
// byte rather than six.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
