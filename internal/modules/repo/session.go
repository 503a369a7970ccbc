package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepo interface {
	GetByUID(ctx context.Context, uid string) (*model.Session, error)
	// Upsert writes the session keyed by uid. group, project, permissions,
	// public and created apply only when the row is inserted; label, operator,
	// subject, modified (and timestamp/timezone when carried) are overwritten
	// on every call.
	Upsert(ctx context.Context, s *model.Session) (*model.Session, error)
	// FindSubjectID returns the subject id of some session in the project
	// whose subject has the given code and an id already assigned. First match
	// wins; there is no tie-breaking among candidates.
	FindSubjectID(ctx context.Context, projectID uuid.UUID, code string) (*uuid.UUID, error)
	// MergeObservedTimestamp lowers the session's observed timestamp to the
	// minimum of its current value and ts, and unconditionally overwrites the
	// timezone.
	MergeObservedTimestamp(ctx context.Context, id uuid.UUID, ts time.Time, timezone string) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSessionRepo(db *gorm.DB, log *zap.Logger) SessionRepo {
	return &sessionRepo{db: db, log: log}
}

func (r *sessionRepo) GetByUID(ctx context.Context, uid string) (*model.Session, error) {
	var s model.Session
	if err := r.db.WithContext(ctx).First(&s, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) Upsert(ctx context.Context, s *model.Session) (*model.Session, error) {
	assignments := map[string]any{
		"label":    s.Label,
		"operator": s.Operator,
		"subject":  s.Subject,
		"modified": s.Modified,
	}
	// Timestamp and timezone follow the incoming record only when present,
	// so a later min-merge is never clobbered by an ingest without one.
	if s.Timestamp != nil {
		assignments["timestamp"] = s.Timestamp
	}
	if s.Timezone != "" {
		assignments["timezone"] = s.Timezone
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(s).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUID(ctx, s.UID)
}

func (r *sessionRepo) FindSubjectID(ctx context.Context, projectID uuid.UUID, code string) (*uuid.UUID, error) {
	var s model.Session
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Where("subject ->> 'code' = ?", code).
		Where("subject ->> '_id' IS NOT NULL").
		Limit(1).
		Take(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	subject := s.Subject.Data()
	if subject.ID == nil {
		return nil, ErrNotFound
	}
	return subject.ID, nil
}

func (r *sessionRepo) MergeObservedTimestamp(ctx context.Context, id uuid.UUID, ts time.Time, timezone string) error {
	// LEAST ignores NULL, so an absent timestamp is simply adopted.
	return r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"timestamp": gorm.Expr("LEAST(timestamp, ?)", ts),
			"timezone":  timezone,
		}).Error
}
