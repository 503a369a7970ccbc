package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/scanstack-io/Scantree/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Reconciler folds one ingestion record into the container hierarchy.
type Reconciler interface {
	Reconcile(ctx context.Context, md IngestMetadata) (*ReconciledAcquisition, error)
}

// HierarchyReconciler upserts the session and acquisition a record describes,
// attaches the resolved subject, and propagates permissions and observed
// timestamps. Repeated or out-of-order ingestion of the same keys converges:
// created, inherited permissions and inherited public survive from the first
// call, everything else reflects the latest.
type HierarchyReconciler struct {
	matcher      GroupProjectMatcher
	subjects     *SubjectIdentityResolver
	projects     repo.ProjectRepo
	sessions     repo.SessionRepo
	acquisitions repo.AcquisitionRepo
	dispatcher   *JobDispatcher
	log          *zap.Logger
	now          func() time.Time
}

func NewHierarchyReconciler(
	matcher GroupProjectMatcher,
	subjects *SubjectIdentityResolver,
	projects repo.ProjectRepo,
	sessions repo.SessionRepo,
	acquisitions repo.AcquisitionRepo,
	dispatcher *JobDispatcher,
	log *zap.Logger,
) *HierarchyReconciler {
	return &HierarchyReconciler{
		matcher:      matcher,
		subjects:     subjects,
		projects:     projects,
		sessions:     sessions,
		acquisitions: acquisitions,
		dispatcher:   dispatcher,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (h *HierarchyReconciler) Reconcile(ctx context.Context, md IngestMetadata) (*ReconciledAcquisition, error) {
	if err := validateIngest(md); err != nil {
		return nil, err
	}
	now := h.now()

	// A session's project assignment is sticky: once the uid is known, the
	// group/label in later records is not re-evaluated.
	var project *model.Project
	existing, err := h.sessions.GetByUID(ctx, md.Session.UID)
	switch {
	case err == nil:
		project, err = h.projects.GetByID(ctx, existing.ProjectID)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, repo.ErrNotFound):
		project, err = h.matcher.ResolveProject(ctx, md.Group.ID, md.Project.Label, now)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	subject, err := h.subjects.ResolveSubjectID(ctx, md.Subject, &project.ID)
	if err != nil {
		return nil, err
	}

	sess := &model.Session{
		ID:          uuid.New(),
		UID:         md.Session.UID,
		ProjectID:   project.ID,
		GroupID:     project.GroupID,
		Label:       md.Session.Label,
		Operator:    md.Session.Operator,
		Subject:     datatypes.NewJSONType(subject),
		Permissions: project.Permissions,
		Public:      project.Public,
		Timezone:    md.Session.Timezone,
		Created:     now,
		Modified:    now,
	}
	if md.Session.Timestamp != "" {
		ts, err := parseTimestamp(md.Session.Timestamp)
		if err != nil {
			return nil, err
		}
		sess.Timestamp = &ts
	}
	sess, err = h.sessions.Upsert(ctx, sess)
	if err != nil {
		return nil, err
	}

	h.log.Info("storing",
		zap.String("group", project.GroupID),
		zap.String("project", project.Label),
		zap.String("session", md.Session.UID))

	acq := &model.Acquisition{
		ID:          uuid.New(),
		UID:         md.Acquisition.UID,
		SessionID:   sess.ID,
		Label:       md.Acquisition.Label,
		Instrument:  md.Acquisition.Instrument,
		Permissions: sess.Permissions,
		Public:      sess.Public,
		Timezone:    md.Acquisition.Timezone,
		Created:     now,
		Modified:    now,
	}
	if md.Acquisition.Timestamp != "" {
		ts, err := parseTimestamp(md.Acquisition.Timestamp)
		if err != nil {
			return nil, err
		}
		acq.Timestamp = &ts
		// The project keeps the latest observed time, the session the
		// earliest; the timezone follows the most recent ingest either way.
		if err := h.projects.MergeObservedTimestamp(ctx, project.ID, ts, md.Acquisition.Timezone); err != nil {
			return nil, err
		}
		if err := h.sessions.MergeObservedTimestamp(ctx, sess.ID, ts, md.Acquisition.Timezone); err != nil {
			return nil, err
		}
	}

	acq, err = h.acquisitions.Upsert(ctx, acq)
	if err != nil {
		return nil, err
	}

	return &ReconciledAcquisition{
		Acquisition:  acq,
		fileinfo:     md.File,
		acquisitions: h.acquisitions,
		dispatcher:   h.dispatcher,
		now:          h.now,
	}, nil
}

func validateIngest(md IngestMetadata) error {
	fail := func(reason string) error {
		return &ValidationError{Reason: reason, Metadata: md}
	}
	switch {
	case md.Group == nil || md.Group.ID == "":
		return fail("group._id is required")
	case md.Project == nil || md.Project.Label == "":
		return fail("project.label is required")
	case md.Session == nil || md.Session.UID == "":
		return fail("session.uid is required")
	case md.Acquisition == nil || md.Acquisition.UID == "":
		return fail("acquisition.uid is required")
	}
	return nil
}

func parseTimestamp(raw string) (time.Time, error) {
	ts, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return ts.UTC(), nil
}

// ReconciledAcquisition is the handle returned by Reconcile through which the
// record's file metadata is attached to the stored acquisition.
type ReconciledAcquisition struct {
	Acquisition *model.Acquisition

	// fileinfo holds the record's recurring file fields; they are merged over
	// every file added or updated through this handle.
	fileinfo     *model.FileInfo
	acquisitions repo.AcquisitionRepo
	dispatcher   *JobDispatcher
	now          func() time.Time
}

// FindFile scans the acquisition's file list for an entry by name.
func (ra *ReconciledAcquisition) FindFile(name string) *model.FileInfo {
	for _, f := range ra.Acquisition.Files.Data() {
		if f.Name == name {
			cp := f
			return &cp
		}
	}
	return nil
}

// UpdateFile overwrites the stored entry matching fi's name and stamps it
// modified.
func (ra *ReconciledAcquisition) UpdateFile(ctx context.Context, fi model.FileInfo) error {
	merged := ra.mergeRecurring(fi)
	now := ra.now()
	merged.Modified = &now
	if err := ra.acquisitions.UpdateFile(ctx, ra.Acquisition.ID, merged); err != nil {
		return err
	}
	ra.dispatch(ctx, merged)
	return nil
}

// AddFile appends a new entry to the acquisition's file list.
func (ra *ReconciledAcquisition) AddFile(ctx context.Context, fi model.FileInfo) error {
	merged := ra.mergeRecurring(fi)
	if err := ra.acquisitions.AddFile(ctx, ra.Acquisition.ID, merged); err != nil {
		return err
	}
	ra.dispatch(ctx, merged)
	return nil
}

func (ra *ReconciledAcquisition) dispatch(ctx context.Context, fi model.FileInfo) {
	if ra.dispatcher != nil {
		ra.dispatcher.FileLanded(ctx, ra.Acquisition, fi)
	}
}

// mergeRecurring overlays the record-level recurring fields onto one file
// entry; the recurring values win.
func (ra *ReconciledAcquisition) mergeRecurring(fi model.FileInfo) model.FileInfo {
	r := ra.fileinfo
	if r == nil {
		return fi
	}
	if r.Type != "" {
		fi.Type = r.Type
	}
	if r.Size != 0 {
		fi.Size = r.Size
	}
	if r.Hash != "" {
		fi.Hash = r.Hash
	}
	if r.Instrument != "" {
		fi.Instrument = r.Instrument
	}
	if len(r.Measurements) > 0 {
		fi.Measurements = r.Measurements
	}
	if len(r.Tags) > 0 {
		fi.Tags = r.Tags
	}
	if r.Origin != nil {
		fi.Origin = r.Origin
	}
	if len(r.Metadata) > 0 {
		if fi.Metadata == nil {
			fi.Metadata = map[string]any{}
		}
		for k, v := range r.Metadata {
			fi.Metadata[k] = v
		}
	}
	return fi
}
