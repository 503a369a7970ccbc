package migrate

import (
	"context"
	"errors"

	"github.com/scanstack-io/Scantree/internal/modules/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormVersionStore keeps the marker in the schema_version singleton row.
// A missing row reads as version 0.
type gormVersionStore struct {
	db *gorm.DB
}

func NewGormVersionStore(db *gorm.DB) VersionStore {
	return &gormVersionStore{db: db}
}

func (s *gormVersionStore) Get(ctx context.Context) (int, error) {
	var v model.SchemaVersion
	err := s.db.WithContext(ctx).First(&v, "id = ?", model.SchemaVersionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v.Database, nil
}

func (s *gormVersionStore) Set(ctx context.Context, version int) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{"database": version}),
		}).
		Create(&model.SchemaVersion{ID: model.SchemaVersionID, Database: version}).Error
}
