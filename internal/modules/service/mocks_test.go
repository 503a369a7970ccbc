package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/stretchr/testify/mock"
)

// ── Mock: GroupRepo ──

type MockGroupRepo struct {
	mock.Mock
}

func (m *MockGroupRepo) Get(ctx context.Context, id string) (*model.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupRepo) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGroupRepo) Upsert(ctx context.Context, g *model.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

// ── Mock: ProjectRepo ──

type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) FindOrCreate(ctx context.Context, group *model.Group, label string, now time.Time) (*model.Project, error) {
	args := m.Called(ctx, group, label, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) MergeObservedTimestamp(ctx context.Context, id uuid.UUID, ts time.Time, timezone string) error {
	args := m.Called(ctx, id, ts, timezone)
	return args.Error(0)
}

func (m *MockProjectRepo) UpdatePermissions(ctx context.Context, id uuid.UUID, perms []model.Permission) error {
	args := m.Called(ctx, id, perms)
	return args.Error(0)
}

// ── Mock: SessionRepo ──

type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) GetByUID(ctx context.Context, uid string) (*model.Session, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepo) Upsert(ctx context.Context, s *model.Session) (*model.Session, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepo) FindSubjectID(ctx context.Context, projectID uuid.UUID, code string) (*uuid.UUID, error) {
	args := m.Called(ctx, projectID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uuid.UUID), args.Error(1)
}

func (m *MockSessionRepo) MergeObservedTimestamp(ctx context.Context, id uuid.UUID, ts time.Time, timezone string) error {
	args := m.Called(ctx, id, ts, timezone)
	return args.Error(0)
}

// ── Mock: AcquisitionRepo ──

type MockAcquisitionRepo struct {
	mock.Mock
}

func (m *MockAcquisitionRepo) GetByUID(ctx context.Context, uid string) (*model.Acquisition, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Acquisition), args.Error(1)
}

func (m *MockAcquisitionRepo) Upsert(ctx context.Context, a *model.Acquisition) (*model.Acquisition, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Acquisition), args.Error(1)
}

func (m *MockAcquisitionRepo) AddFile(ctx context.Context, id uuid.UUID, fi model.FileInfo) error {
	args := m.Called(ctx, id, fi)
	return args.Error(0)
}

func (m *MockAcquisitionRepo) UpdateFile(ctx context.Context, id uuid.UUID, fi model.FileInfo) error {
	args := m.Called(ctx, id, fi)
	return args.Error(0)
}

// ── Mock: JobRepo ──

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, j *model.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

// ── Mock: ContainerRepo ──

type MockContainerRepo struct {
	mock.Mock
}

func (m *MockContainerRepo) Resolve(ctx context.Context, containerType, id string) (*model.ContainerDoc, error) {
	args := m.Called(ctx, containerType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContainerDoc), args.Error(1)
}

// ── Mock: GroupProjectMatcher ──

type MockGroupProjectMatcher struct {
	mock.Mock
}

func (m *MockGroupProjectMatcher) ResolveProject(ctx context.Context, rawGroupName, rawProjectLabel string, now time.Time) (*model.Project, error) {
	args := m.Called(ctx, rawGroupName, rawProjectLabel, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}
