package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func testAcquisition(uid string, sessionID uuid.UUID, now time.Time) *model.Acquisition {
	return &model.Acquisition{
		ID:         uuid.New(),
		UID:        uid,
		SessionID:  sessionID,
		Label:      "localizer",
		Instrument: "MRI",
		Permissions: datatypes.NewJSONType([]model.Permission{
			{ID: "pi", Access: model.AccessAdmin},
		}),
		Created:  now,
		Modified: now,
	}
}

func TestOverlayFileInfo(t *testing.T) {
	created := time.Now().UTC()
	stored := model.FileInfo{
		Name: "scan.dcm", Type: "dicom", Size: 1024, Hash: "h1",
		Tags:     []string{"incomplete"},
		Metadata: map[string]any{"series": "localizer"},
		Created:  &created,
	}

	got := overlayFileInfo(stored, model.FileInfo{Name: "scan.dcm", Hash: "h2"})

	assert.Equal(t, "h2", got.Hash)
	assert.Equal(t, "dicom", got.Type)
	assert.Equal(t, int64(1024), got.Size)
	assert.Equal(t, []string{"incomplete"}, got.Tags)
	assert.Equal(t, "localizer", got.Metadata["series"])
	assert.Equal(t, &created, got.Created)

	got = overlayFileInfo(stored, model.FileInfo{
		Name:     "scan.dcm",
		Tags:     []string{"complete"},
		Metadata: map[string]any{"echo_time": "30ms"},
	})
	assert.Equal(t, []string{"complete"}, got.Tags)
	assert.Equal(t, "30ms", got.Metadata["echo_time"])
	assert.Equal(t, "localizer", got.Metadata["series"])
}

func TestAcquisitionRepo_Upsert(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}

	repo := NewAcquisitionRepo(db, zap.NewNop())
	ctx := context.Background()

	sessionID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	defer db.Exec("DELETE FROM acquisitions WHERE session_id = ?", sessionID)

	first, err := repo.Upsert(ctx, testAcquisition("acq-upsert-1", sessionID, now))
	require.NoError(t, err)

	incoming := testAcquisition("acq-upsert-1", uuid.New(), now.Add(time.Hour))
	incoming.Label = "localizer redo"
	incoming.Instrument = "MRI-B"
	incoming.Public = true

	got, err := repo.Upsert(ctx, incoming)
	require.NoError(t, err)

	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "localizer redo", got.Label)
	assert.Equal(t, "MRI-B", got.Instrument)

	// Session binding, public and created only apply on insert.
	assert.Equal(t, sessionID, got.SessionID)
	assert.False(t, got.Public)
	assert.Equal(t, first.Created.Unix(), got.Created.Unix())
}

func TestAcquisitionRepo_Files(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}

	repo := NewAcquisitionRepo(db, zap.NewNop())
	ctx := context.Background()

	sessionID := uuid.New()
	now := time.Now().UTC()
	defer db.Exec("DELETE FROM acquisitions WHERE session_id = ?", sessionID)

	acq, err := repo.Upsert(ctx, testAcquisition("acq-files-1", sessionID, now))
	require.NoError(t, err)

	t.Run("add then read back", func(t *testing.T) {
		require.NoError(t, repo.AddFile(ctx, acq.ID, model.FileInfo{
			Name: "scan.dcm", Type: "dicom", Size: 1024,
			Tags:     []string{"incomplete"},
			Metadata: map[string]any{"series": "localizer"},
		}))
		require.NoError(t, repo.AddFile(ctx, acq.ID, model.FileInfo{Name: "bold.nii", Type: "nifti"}))

		got, err := repo.GetByUID(ctx, "acq-files-1")
		require.NoError(t, err)
		require.Len(t, got.Files.Data(), 2)
		assert.Equal(t, "scan.dcm", got.Files.Data()[0].Name)
	})

	t.Run("update overlays the matching entry", func(t *testing.T) {
		require.NoError(t, repo.UpdateFile(ctx, acq.ID, model.FileInfo{Name: "scan.dcm", Type: "dicom", Size: 2048, Hash: "h2"}))

		got, err := repo.GetByUID(ctx, "acq-files-1")
		require.NoError(t, err)
		require.Len(t, got.Files.Data(), 2)
		assert.Equal(t, int64(2048), got.Files.Data()[0].Size)
		assert.Equal(t, "h2", got.Files.Data()[0].Hash)
	})

	t.Run("fields absent from the update survive", func(t *testing.T) {
		// A re-ingest carrying only a new hash must not wipe what earlier
		// ingests recorded on the entry.
		require.NoError(t, repo.UpdateFile(ctx, acq.ID, model.FileInfo{Name: "scan.dcm", Hash: "h3"}))

		got, err := repo.GetByUID(ctx, "acq-files-1")
		require.NoError(t, err)
		entry := got.Files.Data()[0]
		assert.Equal(t, "h3", entry.Hash)
		assert.Equal(t, "dicom", entry.Type)
		assert.Equal(t, int64(2048), entry.Size)
		assert.Equal(t, []string{"incomplete"}, entry.Tags)
		assert.Equal(t, "localizer", entry.Metadata["series"])
	})

	t.Run("metadata merges per key", func(t *testing.T) {
		require.NoError(t, repo.UpdateFile(ctx, acq.ID, model.FileInfo{
			Name:     "scan.dcm",
			Metadata: map[string]any{"echo_time": "30ms"},
		}))

		got, err := repo.GetByUID(ctx, "acq-files-1")
		require.NoError(t, err)
		entry := got.Files.Data()[0]
		assert.Equal(t, "30ms", entry.Metadata["echo_time"])
		assert.Equal(t, "localizer", entry.Metadata["series"])
	})

	t.Run("update of an unknown name fails", func(t *testing.T) {
		err := repo.UpdateFile(ctx, acq.ID, model.FileInfo{Name: "missing.dat"})
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("mutation of an unknown acquisition fails", func(t *testing.T) {
		err := repo.AddFile(ctx, uuid.New(), model.FileInfo{Name: "scan.dcm"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
