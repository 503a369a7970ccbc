package repo

import (
	"context"
	"errors"

	"github.com/scanstack-io/Scantree/internal/modules/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GroupRepo interface {
	Get(ctx context.Context, id string) (*model.Group, error)
	ListIDs(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, g *model.Group) error
}

type groupRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGroupRepo(db *gorm.DB, log *zap.Logger) GroupRepo {
	return &groupRepo{db: db, log: log}
}

func (r *groupRepo) Get(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Group{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *groupRepo) Upsert(ctx context.Context, g *model.Group) error {
	return r.db.WithContext(ctx).Save(g).Error
}
