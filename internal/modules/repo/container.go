package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContainerRepo resolves a (type, id) pair to the container's permission view
// regardless of which collection it lives in.
type ContainerRepo interface {
	Resolve(ctx context.Context, containerType, id string) (*model.ContainerDoc, error)
}

type containerRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewContainerRepo(db *gorm.DB, log *zap.Logger) ContainerRepo {
	return &containerRepo{db: db, log: log}
}

func (r *containerRepo) Resolve(ctx context.Context, containerType, id string) (*model.ContainerDoc, error) {
	switch containerType {
	case model.ContainerGroup:
		var g model.Group
		if err := r.first(ctx, &g, "id = ?", id); err != nil {
			return nil, err
		}
		return &model.ContainerDoc{
			Type:        containerType,
			ID:          g.ID,
			Label:       g.Name,
			Permissions: g.Roles.Data(),
		}, nil
	case model.ContainerProject:
		var p model.Project
		if err := r.firstByUUID(ctx, &p, id); err != nil {
			return nil, err
		}
		return &model.ContainerDoc{
			Type:        containerType,
			ID:          p.ID.String(),
			Label:       p.Label,
			Permissions: p.Permissions.Data(),
			Public:      p.Public,
		}, nil
	case model.ContainerSession:
		var s model.Session
		if err := r.firstByUUID(ctx, &s, id); err != nil {
			return nil, err
		}
		return &model.ContainerDoc{
			Type:        containerType,
			ID:          s.ID.String(),
			Label:       s.Label,
			Permissions: s.Permissions.Data(),
			Public:      s.Public,
		}, nil
	case model.ContainerAcquisition:
		var a model.Acquisition
		if err := r.firstByUUID(ctx, &a, id); err != nil {
			return nil, err
		}
		return &model.ContainerDoc{
			Type:        containerType,
			ID:          a.ID.String(),
			Label:       a.Label,
			Permissions: a.Permissions.Data(),
			Public:      a.Public,
		}, nil
	default:
		return nil, fmt.Errorf("unknown container type %q", containerType)
	}
}

func (r *containerRepo) first(ctx context.Context, dest any, query string, args ...any) error {
	err := r.db.WithContext(ctx).First(dest, append([]any{query}, args...)...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *containerRepo) firstByUUID(ctx context.Context, dest any, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return r.first(ctx, dest, "id = ?", id)
}
