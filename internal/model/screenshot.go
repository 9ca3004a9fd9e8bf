// Package model holds the API's domain types. It has no persistence tags
// beyond JSON and no behavior.
package model

import (
	"time"

	"shotapi/internal/metadata"
)

// Screenshot is an object in the store as the API presents it.
// Metadata is the decoded custom metadata; it is never nil on the wire.
type Screenshot struct {
	Key      string            `json:"key"`
	Size     int64             `json:"size"`
	Uploaded time.Time         `json:"uploaded"`
	ETag     string            `json:"etag"`
	URL      string            `json:"url"`
	Metadata metadata.Metadata `json:"metadata"`
}

// ScreenshotList is the listing payload.
type ScreenshotList struct {
	Screenshots []Screenshot `json:"screenshots"`
	Count       int          `json:"count"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	PerPage     int          `json:"per_page"`
	Truncated   bool         `json:"truncated"`
	Tags        []string     `json:"tags"`
}

// MetadataResult is returned by metadata updates and clears.
type MetadataResult struct {
	Key      string            `json:"key"`
	Metadata metadata.Metadata `json:"metadata"`
}
