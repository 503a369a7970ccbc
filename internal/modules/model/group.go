package model

import (
	"time"

	"gorm.io/datatypes"
)

// UnknownGroupID is the catch-all group for ingestion records whose group
// name could not be resolved to exactly one known group.
const UnknownGroupID = "unknown"

// Group is the top of the container hierarchy. Its id is human-chosen, not
// generated. Roles are the default permissions stamped onto projects created
// under the group.
type Group struct {
	ID   string `gorm:"primaryKey" json:"_id"`
	Name string `json:"name,omitempty"`

	Roles datatypes.JSONType[[]Permission] `gorm:"type:jsonb" json:"roles"`

	Created  time.Time `gorm:"not null" json:"created"`
	Modified time.Time `gorm:"not null" json:"modified"`
}

func (Group) TableName() string { return "groups" }
