package model

// SchemaVersion is the global singleton recording which schema migrations
// have been fully applied. Absent row means version 0.
type SchemaVersion struct {
	ID       string `gorm:"primaryKey" json:"_id"`
	Database int    `gorm:"not null" json:"database"`
}

func (SchemaVersion) TableName() string { return "schema_version" }

// SchemaVersionID is the fixed key of the singleton row.
const SchemaVersionID = "version"
