package repo

import (
	"context"

	"github.com/scanstack-io/Scantree/internal/modules/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type JobRepo interface {
	Create(ctx context.Context, j *model.Job) error
}

type jobRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewJobRepo(db *gorm.DB, log *zap.Logger) JobRepo {
	return &jobRepo{db: db, log: log}
}

func (r *jobRepo) Create(ctx context.Context, j *model.Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}
