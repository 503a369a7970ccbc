package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// JobInput points a processing job at a file (or, without a filename, at a
// whole container).
type JobInput struct {
	ContainerType string `json:"container_type"`
	ContainerID   string `json:"container_id"`
	Filename      string `json:"filename,omitempty"`
	Filehash      string `json:"filehash,omitempty"`
}

// Job is a queued processing task dispatched when a file lands on an
// acquisition. Input is the legacy single-input shape; schema migration 7
// restructures it into the named Inputs map plus Destination.
type Job struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"_id"`
	AlgorithmID string    `gorm:"not null" json:"algorithm_id"`

	Input       datatypes.JSONType[*JobInput]           `gorm:"type:jsonb" json:"input,omitempty"`
	Inputs      datatypes.JSONType[map[string]JobInput] `gorm:"type:jsonb" json:"inputs,omitempty"`
	Destination datatypes.JSONType[*JobInput]           `gorm:"type:jsonb" json:"destination,omitempty"`

	State string `gorm:"not null;default:'pending'" json:"state"`

	Created  time.Time `gorm:"not null" json:"created"`
	Modified time.Time `gorm:"not null" json:"modified"`
}

func (Job) TableName() string { return "jobs" }

// Job states.
const (
	JobStatePending = "pending"
	JobStateRunning = "running"
	JobStateDone    = "done"
	JobStateFailed  = "failed"
)
