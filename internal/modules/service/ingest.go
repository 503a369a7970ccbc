package service

import "github.com/scanstack-io/Scantree/internal/modules/model"

// IngestMetadata is one ingestion record as delivered by an instrument or
// upload agent: optional nested records describing where in the hierarchy the
// data belongs, plus the optional subject and file metadata.
type IngestMetadata struct {
	Group       *GroupInput       `json:"group,omitempty"`
	Project     *ProjectInput     `json:"project,omitempty"`
	Session     *SessionInput     `json:"session,omitempty"`
	Acquisition *AcquisitionInput `json:"acquisition,omitempty"`
	Subject     *model.Subject    `json:"subject,omitempty"`
	File        *model.FileInfo   `json:"file,omitempty"`
}

type GroupInput struct {
	ID string `json:"_id"`
}

type ProjectInput struct {
	Label string `json:"label"`
}

type SessionInput struct {
	UID      string `json:"uid"`
	Label    string `json:"label,omitempty"`
	Operator string `json:"operator,omitempty"`
	// Timestamp arrives as text in whatever format the source emits and is
	// parsed during reconciliation.
	Timestamp string `json:"timestamp,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

type AcquisitionInput struct {
	UID        string `json:"uid"`
	Label      string `json:"label,omitempty"`
	Instrument string `json:"instrument,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}
