package service

import (
	"context"

	"github.com/google/uuid"
	mq "github.com/scanstack-io/Scantree/internal/infra/queue"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/scanstack-io/Scantree/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// dispatchRule pairs a file type with the algorithm that should run on it and
// the input name that algorithm expects.
type dispatchRule struct {
	algorithmID string
	inputName   string
}

var fileDispatchRules = map[string]dispatchRule{
	"dicom": {algorithmID: "dicom_mr_classifier", inputName: "dicom"},
	"nifti": {algorithmID: "qa-report-fmri", inputName: "nifti"},
}

// JobDispatcher queues processing jobs when file metadata lands on an
// acquisition, and announces them on the job exchange.
type JobDispatcher struct {
	jobs repo.JobRepo
	pub  *mq.Publisher
	log  *zap.Logger
}

func NewJobDispatcher(jobs repo.JobRepo, pub *mq.Publisher, log *zap.Logger) *JobDispatcher {
	return &JobDispatcher{jobs: jobs, pub: pub, log: log}
}

type jobCreatedEvent struct {
	JobID         uuid.UUID `json:"job_id"`
	AlgorithmID   string    `json:"algorithm_id"`
	AcquisitionID uuid.UUID `json:"acquisition_id"`
	Filename      string    `json:"filename"`
}

// FileLanded evaluates the dispatch rules for the file's type. No rule means
// no job. Persisting the job is authoritative; a failed exchange publish is
// logged and dropped, consumers reconcile from the store.
func (d *JobDispatcher) FileLanded(ctx context.Context, acq *model.Acquisition, fi model.FileInfo) {
	rule, ok := fileDispatchRules[fi.Type]
	if !ok {
		return
	}

	input := model.JobInput{
		ContainerType: model.ContainerAcquisition,
		ContainerID:   acq.ID.String(),
		Filename:      fi.Name,
		Filehash:      fi.Hash,
	}
	destination := model.JobInput{
		ContainerType: model.ContainerAcquisition,
		ContainerID:   acq.ID.String(),
	}
	job := &model.Job{
		ID:          uuid.New(),
		AlgorithmID: rule.algorithmID,
		Inputs:      datatypes.NewJSONType(map[string]model.JobInput{rule.inputName: input}),
		Destination: datatypes.NewJSONType(&destination),
		State:       model.JobStatePending,
		Created:     acq.Modified,
		Modified:    acq.Modified,
	}
	if err := d.jobs.Create(ctx, job); err != nil {
		d.log.Error("job create failed",
			zap.String("algorithm", rule.algorithmID),
			zap.String("acquisition", acq.UID),
			zap.Error(err))
		return
	}

	if d.pub == nil {
		return
	}
	event := jobCreatedEvent{
		JobID:         job.ID,
		AlgorithmID:   job.AlgorithmID,
		AcquisitionID: acq.ID,
		Filename:      fi.Name,
	}
	if err := d.pub.PublishJSON(ctx, event); err != nil {
		d.log.Warn("job event publish failed",
			zap.String("job", job.ID.String()),
			zap.Error(err))
	}
}
