package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/scanstack-io/Scantree/internal/modules/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestResolveSubjectID_AlreadyIdentified(t *testing.T) {
	sessions := new(MockSessionRepo)
	r := NewSubjectIdentityResolver(sessions, zap.NewNop())

	id := uuid.New()
	projectID := uuid.New()
	got, err := r.ResolveSubjectID(context.Background(), &model.Subject{ID: &id, Code: "s01"}, &projectID)

	assert.NoError(t, err)
	assert.Equal(t, &id, got.ID)
	sessions.AssertNotCalled(t, "FindSubjectID")
}

func TestResolveSubjectID_ReusesCodeMatch(t *testing.T) {
	sessions := new(MockSessionRepo)
	r := NewSubjectIdentityResolver(sessions, zap.NewNop())

	existing := uuid.New()
	projectID := uuid.New()
	sessions.On("FindSubjectID", mock.Anything, projectID, "s01").Return(&existing, nil)

	got, err := r.ResolveSubjectID(context.Background(), &model.Subject{Code: "s01"}, &projectID)
	assert.NoError(t, err)
	assert.Equal(t, &existing, got.ID)
	assert.Equal(t, "s01", got.Code)
}

func TestResolveSubjectID_NewIdentityWhenNoMatch(t *testing.T) {
	sessions := new(MockSessionRepo)
	r := NewSubjectIdentityResolver(sessions, zap.NewNop())

	projectID := uuid.New()
	sessions.On("FindSubjectID", mock.Anything, projectID, "s01").Return(nil, repo.ErrNotFound)

	got, err := r.ResolveSubjectID(context.Background(), &model.Subject{Code: "s01"}, &projectID)
	assert.NoError(t, err)
	assert.NotNil(t, got.ID)
}

func TestResolveSubjectID_NoCodeGetsFreshIdentity(t *testing.T) {
	sessions := new(MockSessionRepo)
	r := NewSubjectIdentityResolver(sessions, zap.NewNop())

	got, err := r.ResolveSubjectID(context.Background(), nil, nil)
	assert.NoError(t, err)
	assert.NotNil(t, got.ID)
	sessions.AssertNotCalled(t, "FindSubjectID")
}

func TestResolveSubjectID_LookupErrorPropagates(t *testing.T) {
	sessions := new(MockSessionRepo)
	r := NewSubjectIdentityResolver(sessions, zap.NewNop())

	projectID := uuid.New()
	boom := errors.New("connection reset")
	sessions.On("FindSubjectID", mock.Anything, projectID, "s01").Return(nil, boom)

	_, err := r.ResolveSubjectID(context.Background(), &model.Subject{Code: "s01"}, &projectID)
	assert.ErrorIs(t, err, boom)
}
