package metadata

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ValidationResult lists every problem found in a raw update.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validate checks raw caller input before sanitization. It accumulates every
// failure instead of stopping at the first. A null field is accepted and
// means "clear".
func (p *Pipeline) Validate(raw any) ValidationResult {
	in, ok := raw.(map[string]any)
	if !ok || in == nil {
		return ValidationResult{Valid: false, Errors: []string{"Metadata must be an object"}}
	}

	var errs []string

	var unknown []string
	for name := range in {
		if !allowed(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errs = append(errs, "Unknown fields: "+strings.Join(unknown, ", "))
	}

	for _, f := range textFields {
		v, present := in[f.name]
		if !present || v == nil {
			continue
		}
		s, isString := v.(string)
		if !isString {
			errs = append(errs, f.label+" must be a string")
			continue
		}
		if n, max := utf8.RuneCountInString(s), f.max(p.limits); n > max {
			errs = append(errs, fmt.Sprintf("%s must not exceed %d characters (got %d)", f.label, max, n))
		}
	}

	if v, present := in[FieldTags]; present && v != nil {
		errs = append(errs, p.validateTags(v)...)
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func (p *Pipeline) validateTags(v any) []string {
	tags, ok := asList(v)
	if !ok {
		return []string{"Tags must be an array"}
	}

	var errs []string
	if len(tags) > p.limits.MaxTags {
		errs = append(errs, fmt.Sprintf("Maximum %d tags allowed", p.limits.MaxTags))
	}

	seen := make(map[string]struct{}, len(tags))
	duplicate := false
	for i, t := range tags {
		tag, ok := t.(string)
		if !ok {
			errs = append(errs, fmt.Sprintf("Tag at index %d must be a string", i))
			continue
		}
		switch n := utf8.RuneCountInString(tag); {
		case n == 0:
			errs = append(errs, "Tags cannot be empty strings")
		case n > p.limits.MaxTagLength:
			errs = append(errs, fmt.Sprintf("Tag %q exceeds maximum length of %d characters", tag, p.limits.MaxTagLength))
		}
		key := strings.ToLower(strings.TrimSpace(tag))
		if _, dup := seen[key]; dup {
			duplicate = true
		}
		seen[key] = struct{}{}
	}
	if duplicate {
		errs = append(errs, "Duplicate tags are not allowed")
	}
	return errs
}
