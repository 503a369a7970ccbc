package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Acquisition belongs to exactly one session. Permissions and public are
// copied from the session at creation time only. File metadata is embedded as
// a JSONB list; the binary payloads live in an external storage backend.
type Acquisition struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"_id"`
	UID       string    `gorm:"not null;uniqueIndex" json:"uid"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session"`

	Label      string `json:"label,omitempty"`
	Instrument string `json:"instrument,omitempty"`

	Permissions datatypes.JSONType[[]Permission] `gorm:"type:jsonb" json:"permissions"`
	Public      bool                             `gorm:"not null;default:false" json:"public"`

	Timestamp *time.Time `json:"timestamp,omitempty"`
	Timezone  string     `json:"timezone,omitempty"`

	Files datatypes.JSONType[[]FileInfo] `gorm:"type:jsonb" json:"files,omitempty"`

	Created  time.Time `gorm:"not null" json:"created"`
	Modified time.Time `gorm:"not null" json:"modified"`
}

func (Acquisition) TableName() string { return "acquisitions" }
