package migrate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultSteps is the ordered version → transformation table. Each entry
// upgrades a corpus at version v-1 to version v and must be re-runnable over
// an already-migrated corpus.
func defaultSteps() map[int]Step {
	return map[int]Step{
		1: upgradeTo1,
		2: upgradeTo2,
		3: upgradeTo3,
		4: upgradeTo4,
		5: upgradeTo5,
		6: upgradeTo6,
		7: upgradeTo7,
	}
}

// upgradeTo1 initializes the version marker row.
func upgradeTo1(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SchemaVersion{ID: model.SchemaVersionID, Database: 1}).Error
}

// upgradeTo2 backfills file origin names from origin ids where the name was
// never recorded, across every container that carries a file list.
func upgradeTo2(ctx context.Context, db *gorm.DB) error {
	for _, table := range []string{"projects", "sessions", "acquisitions"} {
		if err := backfillFileOrigins(ctx, db, table); err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
	}
	return nil
}

type fileListRow struct {
	ID    uuid.UUID
	Files datatypes.JSONType[[]model.FileInfo]
}

func backfillFileOrigins(ctx context.Context, db *gorm.DB, table string) error {
	var rows []fileListRow
	if err := db.WithContext(ctx).Table(table).
		Select("id", "files").
		Where("files IS NOT NULL").
		Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		files := row.Files.Data()
		changed := false
		for i := range files {
			origin := files[i].Origin
			if origin == nil {
				continue
			}
			if origin.Name == "" && origin.ID != "" {
				origin.Name = origin.ID
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := db.WithContext(ctx).Table(table).
			Where("id = ?", row.ID).
			Update("files", datatypes.NewJSONType(files)).Error; err != nil {
			return err
		}
	}
	return nil
}

// upgradeTo3 backfills the project curator from the first admin permission,
// for projects that never had one assigned.
func upgradeTo3(ctx context.Context, db *gorm.DB) error {
	var projects []model.Project
	if err := db.WithContext(ctx).
		Where("curator IS NULL OR curator = ''").
		Find(&projects).Error; err != nil {
		return err
	}
	for _, p := range projects {
		for _, perm := range p.Permissions.Data() {
			if perm.Access != model.AccessAdmin {
				continue
			}
			if err := db.WithContext(ctx).Model(&model.Project{}).
				Where("id = ?", p.ID).
				Update("curator", perm.ID).Error; err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// upgradeTo4 assigns subject ids to sessions that predate subject identity.
// Sessions in the same project sharing a subject code converge on one new id;
// sessions without a code each get their own.
func upgradeTo4(ctx context.Context, db *gorm.DB) error {
	var sessions []model.Session
	if err := db.WithContext(ctx).
		Where("subject ->> '_id' IS NULL").
		Find(&sessions).Error; err != nil {
		return err
	}

	type subjectKey struct {
		project uuid.UUID
		code    string
	}
	shared := make(map[subjectKey]uuid.UUID)

	for _, s := range sessions {
		subject := s.Subject.Data()
		var id uuid.UUID
		if subject.Code == "" {
			id = uuid.New()
		} else {
			key := subjectKey{project: s.ProjectID, code: subject.Code}
			assigned, ok := shared[key]
			if !ok {
				assigned = uuid.New()
				shared[key] = assigned
			}
			id = assigned
		}
		subject.ID = &id
		if err := db.WithContext(ctx).Model(&model.Session{}).
			Where("id = ?", s.ID).
			Update("subject", datatypes.NewJSONType(subject)).Error; err != nil {
			return err
		}
	}
	return nil
}

// upgradeTo5 re-syncs session and acquisition permissions from their project.
// Creation-time inheritance never propagates later permission changes; this
// sweep reconciles the whole corpus once.
func upgradeTo5(ctx context.Context, db *gorm.DB) error {
	var projects []model.Project
	if err := db.WithContext(ctx).Find(&projects).Error; err != nil {
		return err
	}
	for _, p := range projects {
		if err := db.WithContext(ctx).Model(&model.Session{}).
			Where("project_id = ?", p.ID).
			Update("permissions", p.Permissions).Error; err != nil {
			return err
		}
		sessionIDs := db.WithContext(ctx).Model(&model.Session{}).
			Select("id").
			Where("project_id = ?", p.ID)
		if err := db.WithContext(ctx).Model(&model.Acquisition{}).
			Where("session_id IN (?)", sessionIDs).
			Update("permissions", p.Permissions).Error; err != nil {
			return err
		}
	}
	return nil
}

// upgradeTo6 backfills the denormalized session group column from the owning
// project, for sessions stored before the column existed.
func upgradeTo6(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Model(&model.Session{}).
		Where("group_id IS NULL OR group_id = ''").
		Update("group_id", gorm.Expr(
			"(SELECT group_id FROM projects WHERE projects.id = sessions.project_id)",
		)).Error
}

// inputNameForAlgorithm maps legacy single-input jobs to the input name their
// algorithm expects. Deployments carrying other algorithms at upgrade time
// must extend this map.
var inputNameForAlgorithm = map[string]string{
	"dcm_convert":         "dicom",
	"qa-report-fmri":      "nifti",
	"dicom_mr_classifier": "dicom",
}

// upgradeTo7 restructures jobs from the legacy single input field into the
// named inputs map plus an explicit destination (the input's container).
func upgradeTo7(ctx context.Context, db *gorm.DB) error {
	var jobs []model.Job
	// JSONB columns hold the json null literal for zero Go values, so both
	// spellings of "absent" must be covered.
	if err := db.WithContext(ctx).
		Where("input IS NOT NULL AND input != 'null'::jsonb").
		Where("inputs IS NULL OR inputs = 'null'::jsonb").
		Find(&jobs).Error; err != nil {
		return err
	}
	for _, j := range jobs {
		legacy := j.Input.Data()
		if legacy == nil {
			continue
		}
		name, ok := inputNameForAlgorithm[j.AlgorithmID]
		if !ok {
			return fmt.Errorf("no input name mapping for algorithm %q (job %s)", j.AlgorithmID, j.ID)
		}

		// The named input keeps the file reference minus its hash; the
		// destination is the bare container.
		input := *legacy
		input.Filehash = ""
		destination := model.JobInput{
			ContainerType: legacy.ContainerType,
			ContainerID:   legacy.ContainerID,
		}

		if err := db.WithContext(ctx).Model(&model.Job{}).
			Where("id = ?", j.ID).
			Updates(map[string]any{
				"inputs":      datatypes.NewJSONType(map[string]model.JobInput{name: input}),
				"destination": datatypes.NewJSONType(&destination),
				"input":       nil,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}
