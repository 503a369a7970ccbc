package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/scanstack-io/Scantree/internal/modules/repo"
	"go.uber.org/zap"
)

// SubjectIdentityResolver assigns a stable identity to a subject record,
// reusing the identity of another session in the same project with the same
// subject code when one exists.
type SubjectIdentityResolver struct {
	sessions repo.SessionRepo
	log      *zap.Logger
}

func NewSubjectIdentityResolver(sessions repo.SessionRepo, log *zap.Logger) *SubjectIdentityResolver {
	return &SubjectIdentityResolver{sessions: sessions, log: log}
}

// ResolveSubjectID returns the subject with its id populated. An
// already-identified subject is returned unchanged, even if a
// differently-identified subject with the same code exists elsewhere — there
// is no merge logic.
//
// The lookup and the caller's later write are not transactionally guarded:
// two concurrent first ingestions of the same (project, code) pair can
// allocate two distinct ids. Accepted gap; schema migration 4 is the
// after-the-fact convergence sweep for such data.
func (r *SubjectIdentityResolver) ResolveSubjectID(ctx context.Context, subject *model.Subject, projectID *uuid.UUID) (model.Subject, error) {
	if subject == nil {
		subject = &model.Subject{}
	}
	s := *subject
	if s.ID != nil {
		return s, nil
	}

	if s.Code != "" && projectID != nil {
		id, err := r.sessions.FindSubjectID(ctx, *projectID, s.Code)
		switch {
		case err == nil:
			s.ID = id
			return s, nil
		case !errors.Is(err, repo.ErrNotFound):
			return model.Subject{}, err
		}
	}

	id := uuid.New()
	s.ID = &id
	return s, nil
}
