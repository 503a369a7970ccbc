package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	// FindOrCreate upserts the project keyed by (group, label). On insert the
	// group's default roles, public=false and the created/modified stamps are
	// applied; an existing project is returned untouched.
	FindOrCreate(ctx context.Context, group *model.Group, label string, now time.Time) (*model.Project, error)
	// MergeObservedTimestamp raises the project's observed timestamp to the
	// maximum of its current value and ts, and unconditionally overwrites the
	// timezone.
	MergeObservedTimestamp(ctx context.Context, id uuid.UUID, ts time.Time, timezone string) error
	UpdatePermissions(ctx context.Context, id uuid.UUID, perms []model.Permission) error
}

type projectRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewProjectRepo(db *gorm.DB, log *zap.Logger) ProjectRepo {
	return &projectRepo{db: db, log: log}
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var p model.Project
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) FindOrCreate(ctx context.Context, group *model.Group, label string, now time.Time) (*model.Project, error) {
	candidate := model.Project{
		ID:          uuid.New(),
		GroupID:     group.ID,
		Label:       label,
		Permissions: group.Roles,
		Public:      false,
		Created:     now,
		Modified:    now,
	}
	// Insert-only upsert: an existing (group, label) row keeps every field it
	// already has.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "label"}},
			DoNothing: true,
		}).
		Create(&candidate).Error
	if err != nil {
		return nil, err
	}

	var p model.Project
	if err := r.db.WithContext(ctx).
		First(&p, "group_id = ? AND label = ?", group.ID, label).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) MergeObservedTimestamp(ctx context.Context, id uuid.UUID, ts time.Time, timezone string) error {
	// GREATEST ignores NULL, so an absent timestamp is simply adopted.
	return r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"timestamp": gorm.Expr("GREATEST(timestamp, ?)", ts),
			"timezone":  timezone,
		}).Error
}

func (r *projectRepo) UpdatePermissions(ctx context.Context, id uuid.UUID, perms []model.Permission) error {
	return r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Update("permissions", datatypes.NewJSONType(perms)).Error
}
