package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AcquisitionRepo interface {
	GetByUID(ctx context.Context, uid string) (*model.Acquisition, error)
	// Upsert writes the acquisition keyed by uid. session, permissions, public
	// and created apply only when the row is inserted; the incoming
	// acquisition fields and modified are overwritten on every call.
	Upsert(ctx context.Context, a *model.Acquisition) (*model.Acquisition, error)
	// AddFile appends a file entry to the acquisition's file list.
	AddFile(ctx context.Context, id uuid.UUID, fi model.FileInfo) error
	// UpdateFile overlays the set fields of fi onto the stored entry whose
	// name matches fi.Name; fields the update does not carry keep their
	// stored values.
	UpdateFile(ctx context.Context, id uuid.UUID, fi model.FileInfo) error
}

type acquisitionRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAcquisitionRepo(db *gorm.DB, log *zap.Logger) AcquisitionRepo {
	return &acquisitionRepo{db: db, log: log}
}

func (r *acquisitionRepo) GetByUID(ctx context.Context, uid string) (*model.Acquisition, error) {
	var a model.Acquisition
	if err := r.db.WithContext(ctx).First(&a, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *acquisitionRepo) Upsert(ctx context.Context, a *model.Acquisition) (*model.Acquisition, error) {
	assignments := map[string]any{
		"label":      a.Label,
		"instrument": a.Instrument,
		"modified":   a.Modified,
	}
	if a.Timestamp != nil {
		assignments["timestamp"] = a.Timestamp
	}
	if a.Timezone != "" {
		assignments["timezone"] = a.Timezone
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(a).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUID(ctx, a.UID)
}

func (r *acquisitionRepo) AddFile(ctx context.Context, id uuid.UUID, fi model.FileInfo) error {
	return r.mutateFiles(ctx, id, func(files []model.FileInfo) ([]model.FileInfo, error) {
		return append(files, fi), nil
	})
}

func (r *acquisitionRepo) UpdateFile(ctx context.Context, id uuid.UUID, fi model.FileInfo) error {
	return r.mutateFiles(ctx, id, func(files []model.FileInfo) ([]model.FileInfo, error) {
		for i := range files {
			if files[i].Name == fi.Name {
				files[i] = overlayFileInfo(files[i], fi)
				return files, nil
			}
		}
		return nil, ErrFileNotFound
	})
}

// overlayFileInfo writes the carried fields of in over the stored entry.
// Absent fields never clear stored values; metadata merges per key.
func overlayFileInfo(stored, in model.FileInfo) model.FileInfo {
	if in.Type != "" {
		stored.Type = in.Type
	}
	if in.Size != 0 {
		stored.Size = in.Size
	}
	if in.Hash != "" {
		stored.Hash = in.Hash
	}
	if in.Instrument != "" {
		stored.Instrument = in.Instrument
	}
	if len(in.Measurements) > 0 {
		stored.Measurements = in.Measurements
	}
	if len(in.Tags) > 0 {
		stored.Tags = in.Tags
	}
	if len(in.Metadata) > 0 {
		merged := make(map[string]any, len(stored.Metadata)+len(in.Metadata))
		for k, v := range stored.Metadata {
			merged[k] = v
		}
		for k, v := range in.Metadata {
			merged[k] = v
		}
		stored.Metadata = merged
	}
	if in.Origin != nil {
		stored.Origin = in.Origin
	}
	if in.Created != nil {
		stored.Created = in.Created
	}
	if in.Modified != nil {
		stored.Modified = in.Modified
	}
	return stored
}

// mutateFiles rewrites the files list inside a row-locked transaction so
// concurrent file attachments to one acquisition serialize.
func (r *acquisitionRepo) mutateFiles(ctx context.Context, id uuid.UUID, fn func([]model.FileInfo) ([]model.FileInfo, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Acquisition
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		files, err := fn(a.Files.Data())
		if err != nil {
			return err
		}
		return tx.Model(&model.Acquisition{}).
			Where("id = ?", id).
			Update("files", datatypes.NewJSONType(files)).Error
	})
}
