package bootstrap

import (
	"time"

	"github.com/scanstack-io/Scantree/internal/modules/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureDefaultGroupsExist seeds the sentinel "unknown" group that receives
// projects whose raw group name cannot be resolved. Groups are otherwise
// provisioned out of band.
func EnsureDefaultGroupsExist(db *gorm.DB, log *zap.Logger) error {
	now := time.Now().UTC()
	unknown := model.Group{
		ID:       model.UnknownGroupID,
		Name:     "Unknown",
		Roles:    datatypes.NewJSONType([]model.Permission{}),
		Created:  now,
		Modified: now,
	}
	err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&unknown).Error
	if err != nil {
		return err
	}
	log.Debug("default groups ensured", zap.String("group", model.UnknownGroupID))
	return nil
}
