package metadata

// Merge overlays patch on existing field by field. A present field with an
// empty value deletes the field; a present field with a value replaces it
// wholesale; absent fields keep the existing value.
func Merge(existing Metadata, patch Patch) Metadata {
	merged := existing
	if existing.Tags != nil {
		merged.Tags = append([]string(nil), existing.Tags...)
	}

	for _, f := range textFields {
		pf := f.patch(&patch)
		if !pf.Present {
			continue
		}
		*f.value(&merged) = pf.Value
	}

	if patch.Tags.Present {
		if len(patch.Tags.Value) == 0 {
			merged.Tags = nil
		} else {
			merged.Tags = append([]string(nil), patch.Tags.Value...)
		}
	}
	return merged
}
