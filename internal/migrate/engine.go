// Package migrate evolves the document store's schema. A single integer
// marker records which version the corpus is at; an ordered table of
// version-to-version transformations advances it. The engine assumes a single
// exclusive runner — callers must enforce that externally (lock, leader
// election) before invoking Upgrade.
package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CurrentVersion is bumped whenever a new schema change lands, together with
// its entry in the step table.
const CurrentVersion = 7

// Compatibility describes how the stored schema version relates to this
// build.
type Compatibility int

const (
	// Match: stored version equals CurrentVersion.
	Match Compatibility = iota
	// Upgradable: stored version is older; Upgrade can bring it up.
	Upgradable
	// Incompatible: stored version is invalid or newer than this build.
	Incompatible
)

func (c Compatibility) String() string {
	switch c {
	case Match:
		return "match"
	case Upgradable:
		return "upgradable"
	case Incompatible:
		return "incompatible"
	default:
		return fmt.Sprintf("compatibility(%d)", int(c))
	}
}

// VersionStore reads and writes the schema version marker.
type VersionStore interface {
	Get(ctx context.Context) (int, error)
	Set(ctx context.Context, version int) error
}

// Step is one version-to-version transformation. Every step must be a no-op
// over documents it has already migrated: after a partial failure, re-running
// Upgrade is safe only because of that property.
type Step func(ctx context.Context, db *gorm.DB) error

// Engine drives the linear version state machine 0..CurrentVersion. The only
// transition is "apply next step, advance by one"; there is no downgrade.
type Engine struct {
	db       *gorm.DB
	versions VersionStore
	steps    map[int]Step
	current  int
	log      *zap.Logger
}

func New(db *gorm.DB, versions VersionStore, log *zap.Logger) *Engine {
	return &Engine{
		db:       db,
		versions: versions,
		steps:    defaultSteps(),
		current:  CurrentVersion,
		log:      log,
	}
}

// Check reads the stored version and reports whether this build can run
// against it. A negative marker is treated as corrupt, a marker above the
// build's version means the code is older than the data.
func (e *Engine) Check(ctx context.Context) (Compatibility, error) {
	stored, err := e.versions.Get(ctx)
	if err != nil {
		return Incompatible, err
	}
	switch {
	case stored < 0 || stored > e.current:
		e.log.Error("stored schema version is incompatible",
			zap.Int("stored", stored),
			zap.Int("required", e.current))
		return Incompatible, nil
	case stored < e.current:
		return Upgradable, nil
	default:
		return Match, nil
	}
}

// Upgrade applies every step from the stored version up to CurrentVersion, in
// order, with no skipping. The first failing step aborts the whole run and
// leaves the marker untouched, even though documents rewritten by earlier
// steps stay migrated — there is no compensating rollback.
func (e *Engine) Upgrade(ctx context.Context) error {
	stored, err := e.versions.Get(ctx)
	if err != nil {
		return err
	}
	if stored < 0 {
		return fmt.Errorf("stored schema version %d is invalid", stored)
	}

	for v := stored + 1; v <= e.current; v++ {
		step, ok := e.steps[v]
		if !ok {
			return fmt.Errorf("no migration step registered for version %d", v)
		}
		e.log.Info("applying schema migration", zap.Int("version", v))
		if err := step(ctx, e.db); err != nil {
			return fmt.Errorf("migration to version %d: %w", v, err)
		}
	}

	if stored < e.current {
		if err := e.versions.Set(ctx, e.current); err != nil {
			return err
		}
	}
	e.log.Info("schema is current", zap.Int("version", e.current))
	return nil
}
