// Package metadata converts screenshot annotations between the raw JSON a
// client sends, the sanitized application form, and the flat string map the
// object store keeps as custom metadata.
package metadata

import (
	"fmt"
	"strings"
)

// Allow-listed field names.
const (
	FieldDescription = "description"
	FieldTitle       = "title"
	FieldCategory    = "category"
	FieldTags        = "tags"
)

// Limits bounds every field and the encoded total. It is read-only once the
// Pipeline is built.
type Limits struct {
	MaxBytes             int
	MaxDescriptionLength int
	MaxTitleLength       int
	MaxCategoryLength    int
	MaxTags              int
	MaxTagLength         int
}

// DefaultLimits matches the object store's 2KB custom metadata capacity.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:             2048,
		MaxDescriptionLength: 500,
		MaxTitleLength:       100,
		MaxCategoryLength:    50,
		MaxTags:              10,
		MaxTagLength:         50,
	}
}

// Metadata is the sanitized annotation attached to one screenshot.
// Empty fields mean "never set".
type Metadata struct {
	Description string   `json:"description,omitempty"`
	Title       string   `json:"title,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// IsEmpty reports whether no field is set.
func (m Metadata) IsEmpty() bool {
	return m.Description == "" && m.Title == "" && m.Category == "" && len(m.Tags) == 0
}

// HasTag reports whether m carries tag, compared exactly.
func (m Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Field is one entry of a Patch. A present field with a zero value clears
// the stored value.
type Field[T any] struct {
	Present bool
	Value   T
}

// Patch is a sanitized update. Fields not present leave the stored value alone.
type Patch struct {
	Description Field[string]
	Title       Field[string]
	Category    Field[string]
	Tags        Field[[]string]
}

// Values returns the non-empty values carried by p.
func (p Patch) Values() Metadata {
	var m Metadata
	for _, f := range textFields {
		if pf := f.patch(&p); pf.Present {
			*f.value(&m) = pf.Value
		}
	}
	if p.Tags.Present {
		m.Tags = p.Tags.Value
	}
	return m
}

// ValidationError carries every shape violation found in one request.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid metadata: " + strings.Join(e.Errors, "; ")
}

// SizeError reports an encoded size over the limit.
type SizeError struct {
	Size  int
	Limit int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("metadata size (%d bytes) exceeds maximum allowed size of %d bytes", e.Size, e.Limit)
}

// textField describes one free-text field of the allow-list.
type textField struct {
	name  string
	label string
	max   func(Limits) int
	value func(*Metadata) *string
	patch func(*Patch) *Field[string]
}

var textFields = []textField{
	{
		name:  FieldDescription,
		label: "Description",
		max:   func(l Limits) int { return l.MaxDescriptionLength },
		value: func(m *Metadata) *string { return &m.Description },
		patch: func(p *Patch) *Field[string] { return &p.Description },
	},
	{
		name:  FieldTitle,
		label: "Title",
		max:   func(l Limits) int { return l.MaxTitleLength },
		value: func(m *Metadata) *string { return &m.Title },
		patch: func(p *Patch) *Field[string] { return &p.Title },
	},
	{
		name:  FieldCategory,
		label: "Category",
		max:   func(l Limits) int { return l.MaxCategoryLength },
		value: func(m *Metadata) *string { return &m.Category },
		patch: func(p *Patch) *Field[string] { return &p.Category },
	},
}

func allowed(name string) bool {
	if name == FieldTags {
		return true
	}
	for _, f := range textFields {
		if f.name == name {
			return true
		}
	}
	return false
}

// Pipeline runs validation, sanitization, size checks and the store codec
// against a fixed set of Limits.
type Pipeline struct {
	limits Limits
}

// New constructs a Pipeline.
func New(limits Limits) *Pipeline {
	return &Pipeline{limits: limits}
}

// Limits returns the configured limits.
func (p *Pipeline) Limits() Limits {
	return p.limits
}

// Apply runs one update request through the whole pipeline: validate the raw
// input, sanitize it, size-check it, and merge it over existing. Nothing is
// written; the caller persists the returned value with Encode.
func (p *Pipeline) Apply(existing Metadata, raw any) (Metadata, error) {
	if res := p.Validate(raw); !res.Valid {
		return Metadata{}, &ValidationError{Errors: res.Errors}
	}

	patch := p.Sanitize(raw.(map[string]any))
	if res := p.CheckSize(patch.Values()); !res.Valid {
		return Metadata{}, &SizeError{Size: res.Size, Limit: res.Limit}
	}

	merged := Merge(existing, patch)
	if res := p.CheckSize(merged); !res.Valid {
		return Metadata{}, &SizeError{Size: res.Size, Limit: res.Limit}
	}
	return merged, nil
}
