package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project is keyed by its (group, label) pair; created at most once per pair
// and never deleted by this subsystem. The observed timestamp is the maximum
// acquisition timestamp ever ingested under the project.
type Project struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"_id"`
	GroupID string    `gorm:"column:group_id;not null;uniqueIndex:idx_projects_group_label" json:"group"`
	Label   string    `gorm:"not null;uniqueIndex:idx_projects_group_label" json:"label"`
	Name    string    `json:"name"`

	Permissions datatypes.JSONType[[]Permission] `gorm:"type:jsonb" json:"permissions"`
	Public      bool                             `gorm:"not null;default:false" json:"public"`

	// Curator is backfilled from the first admin permission by schema
	// migration 3; empty until then.
	Curator string `json:"curator,omitempty"`

	Timestamp *time.Time `json:"timestamp,omitempty"`
	Timezone  string     `json:"timezone,omitempty"`

	Files datatypes.JSONType[[]FileInfo] `gorm:"type:jsonb" json:"files,omitempty"`

	Created  time.Time `gorm:"not null" json:"created"`
	Modified time.Time `gorm:"not null" json:"modified"`
}

func (Project) TableName() string { return "projects" }
