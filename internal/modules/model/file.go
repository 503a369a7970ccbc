package model

import "time"

// FileOrigin records where a file entry came from. Name and Method were
// optional historically; schema migration 2 backfills them.
type FileOrigin struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Method string `json:"method,omitempty"`
}

// FileInfo is file metadata embedded in a container's files list, keyed by
// Name. The bytes themselves are referenced, never stored here.
type FileInfo struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Size int64  `json:"size,omitempty"`
	Hash string `json:"hash,omitempty"`

	Instrument   string         `json:"instrument,omitempty"`
	Measurements []string       `json:"measurements,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`

	Origin *FileOrigin `json:"origin,omitempty"`

	Created  *time.Time `json:"created,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
}
