package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session belongs to exactly one project; the assignment is sticky and never
// re-evaluated once set. Permissions and public are copied from the project at
// creation time only — later project permission changes do not propagate
// (schema migration 5 is the corpus-wide re-sync for that gap). The observed
// timestamp is the minimum acquisition timestamp ever ingested under the
// session.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"_id"`
	UID       string    `gorm:"not null;uniqueIndex" json:"uid"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project"`
	GroupID   string    `gorm:"column:group_id" json:"group"`

	Label    string `json:"label,omitempty"`
	Operator string `json:"operator,omitempty"`

	Subject datatypes.JSONType[Subject] `gorm:"type:jsonb" json:"subject"`

	Permissions datatypes.JSONType[[]Permission] `gorm:"type:jsonb" json:"permissions"`
	Public      bool                             `gorm:"not null;default:false" json:"public"`

	Timestamp *time.Time `json:"timestamp,omitempty"`
	Timezone  string     `json:"timezone,omitempty"`

	Files datatypes.JSONType[[]FileInfo] `gorm:"type:jsonb" json:"files,omitempty"`

	Created  time.Time `gorm:"not null" json:"created"`
	Modified time.Time `gorm:"not null" json:"modified"`
}

func (Session) TableName() string { return "sessions" }
