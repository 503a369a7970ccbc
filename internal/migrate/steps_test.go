package migrate

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMigrationTestDB(t *testing.T) *gorm.DB {
	// Skip if no test database is configured
	dsn := "host=localhost user=scantree password=helloworld dbname=scantree port=15432 sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Skip("Test database not available, skipping integration tests")
		return nil
	}

	err = db.AutoMigrate(
		&model.Group{},
		&model.Project{},
		&model.Session{},
		&model.Acquisition{},
		&model.Job{},
		&model.SchemaVersion{},
	)
	require.NoError(t, err)

	return db
}

func TestGormVersionStore(t *testing.T) {
	db := setupMigrationTestDB(t)
	if db == nil {
		return
	}
	defer db.Exec("DELETE FROM schema_version")

	store := NewGormVersionStore(db)
	ctx := context.Background()

	t.Run("missing row reads as zero", func(t *testing.T) {
		db.Exec("DELETE FROM schema_version")
		v, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, 3))
		v, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, v)

		// Set replaces, it never accumulates rows.
		require.NoError(t, store.Set(ctx, 7))
		v, err = store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 7, v)

		var count int64
		db.Model(&model.SchemaVersion{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}

func TestUpgradeTo3_CuratorBackfill(t *testing.T) {
	db := setupMigrationTestDB(t)
	if db == nil {
		return
	}

	ctx := context.Background()
	now := time.Now().UTC()

	withAdmin := &model.Project{
		ID: uuid.New(), GroupID: "mig3", Label: "p1",
		Permissions: datatypes.NewJSONType([]model.Permission{
			{ID: "reader", Access: model.AccessReadOnly},
			{ID: "pi", Access: model.AccessAdmin},
		}),
		Created: now, Modified: now,
	}
	alreadySet := &model.Project{
		ID: uuid.New(), GroupID: "mig3", Label: "p2", Curator: "existing",
		Permissions: datatypes.NewJSONType([]model.Permission{
			{ID: "pi", Access: model.AccessAdmin},
		}),
		Created: now, Modified: now,
	}
	noAdmin := &model.Project{
		ID: uuid.New(), GroupID: "mig3", Label: "p3",
		Permissions: datatypes.NewJSONType([]model.Permission{
			{ID: "reader", Access: model.AccessReadOnly},
		}),
		Created: now, Modified: now,
	}
	require.NoError(t, db.Create([]*model.Project{withAdmin, alreadySet, noAdmin}).Error)
	defer db.Exec("DELETE FROM projects WHERE group_id = 'mig3'")

	require.NoError(t, upgradeTo3(ctx, db))

	var got model.Project
	require.NoError(t, db.First(&got, "id = ?", withAdmin.ID).Error)
	assert.Equal(t, "pi", got.Curator)

	require.NoError(t, db.First(&got, "id = ?", alreadySet.ID).Error)
	assert.Equal(t, "existing", got.Curator)

	require.NoError(t, db.First(&got, "id = ?", noAdmin.ID).Error)
	assert.Empty(t, got.Curator)
}

func TestUpgradeTo4_SubjectConvergence(t *testing.T) {
	db := setupMigrationTestDB(t)
	if db == nil {
		return
	}

	ctx := context.Background()
	now := time.Now().UTC()
	projectID := uuid.New()
	otherProject := uuid.New()

	mk := func(uid string, project uuid.UUID, code string) *model.Session {
		return &model.Session{
			ID: uuid.New(), UID: uid, ProjectID: project, GroupID: "mig4",
			Subject: datatypes.NewJSONType(model.Subject{Code: code}),
			Created: now, Modified: now,
		}
	}
	a := mk("mig4-a", projectID, "s01")
	b := mk("mig4-b", projectID, "s01")
	c := mk("mig4-c", otherProject, "s01")
	d := mk("mig4-d", projectID, "")
	e := mk("mig4-e", projectID, "")
	require.NoError(t, db.Create([]*model.Session{a, b, c, d, e}).Error)
	defer db.Exec("DELETE FROM sessions WHERE group_id = 'mig4'")

	require.NoError(t, upgradeTo4(ctx, db))

	subjectOf := func(id uuid.UUID) model.Subject {
		var s model.Session
		require.NoError(t, db.First(&s, "id = ?", id).Error)
		return s.Subject.Data()
	}

	sa, sb, sc := subjectOf(a.ID), subjectOf(b.ID), subjectOf(c.ID)
	require.NotNil(t, sa.ID)
	require.NotNil(t, sc.ID)

	// Same project + same code share one identity; another project does not.
	assert.Equal(t, *sa.ID, *sb.ID)
	assert.NotEqual(t, *sa.ID, *sc.ID)

	// Uncoded subjects each get their own.
	sd, se := subjectOf(d.ID), subjectOf(e.ID)
	require.NotNil(t, sd.ID)
	require.NotNil(t, se.ID)
	assert.NotEqual(t, *sd.ID, *se.ID)

	// Re-running leaves the assigned identities alone.
	require.NoError(t, upgradeTo4(ctx, db))
	assert.Equal(t, *sa.ID, *subjectOf(a.ID).ID)
}

func TestUpgradeTo6_GroupBackfill(t *testing.T) {
	db := setupMigrationTestDB(t)
	if db == nil {
		return
	}

	ctx := context.Background()
	now := time.Now().UTC()

	project := &model.Project{
		ID: uuid.New(), GroupID: "mig6", Label: "p1",
		Created: now, Modified: now,
	}
	require.NoError(t, db.Create(project).Error)
	defer db.Exec("DELETE FROM projects WHERE group_id = 'mig6'")

	sess := &model.Session{
		ID: uuid.New(), UID: "mig6-a", ProjectID: project.ID,
		Created: now, Modified: now,
	}
	require.NoError(t, db.Create(sess).Error)
	defer db.Exec("DELETE FROM sessions WHERE uid = 'mig6-a'")

	require.NoError(t, upgradeTo6(ctx, db))

	var got model.Session
	require.NoError(t, db.First(&got, "id = ?", sess.ID).Error)
	assert.Equal(t, "mig6", got.GroupID)
}

func TestUpgradeTo7_JobRestructure(t *testing.T) {
	db := setupMigrationTestDB(t)
	if db == nil {
		return
	}

	ctx := context.Background()
	now := time.Now().UTC()
	acqID := uuid.New().String()

	legacy := &model.Job{
		ID:          uuid.New(),
		AlgorithmID: "dicom_mr_classifier",
		Input: datatypes.NewJSONType(&model.JobInput{
			ContainerType: model.ContainerAcquisition,
			ContainerID:   acqID,
			Filename:      "scan.dcm",
			Filehash:      "h1",
		}),
		State:   model.JobStatePending,
		Created: now, Modified: now,
	}
	require.NoError(t, db.Create(legacy).Error)
	defer db.Exec("DELETE FROM jobs WHERE id = ?", legacy.ID)

	require.NoError(t, upgradeTo7(ctx, db))

	var got model.Job
	require.NoError(t, db.First(&got, "id = ?", legacy.ID).Error)

	assert.Nil(t, got.Input.Data())

	input, ok := got.Inputs.Data()["dicom"]
	require.True(t, ok)
	assert.Equal(t, "scan.dcm", input.Filename)
	assert.Empty(t, input.Filehash)
	assert.Equal(t, acqID, input.ContainerID)

	dest := got.Destination.Data()
	require.NotNil(t, dest)
	assert.Equal(t, acqID, dest.ContainerID)
	assert.Empty(t, dest.Filename)
}

func TestUpgradeTo7_UnknownAlgorithmAborts(t *testing.T) {
	db := setupMigrationTestDB(t)
	if db == nil {
		return
	}

	now := time.Now().UTC()
	legacy := &model.Job{
		ID:          uuid.New(),
		AlgorithmID: "mystery-algo",
		Input: datatypes.NewJSONType(&model.JobInput{
			ContainerType: model.ContainerAcquisition,
			ContainerID:   uuid.New().String(),
		}),
		State:   model.JobStatePending,
		Created: now, Modified: now,
	}
	require.NoError(t, db.Create(legacy).Error)
	defer db.Exec("DELETE FROM jobs WHERE id = ?", legacy.ID)

	err := upgradeTo7(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery-algo")
}
