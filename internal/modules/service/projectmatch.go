package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/scanstack-io/Scantree/internal/modules/model"
	"github.com/scanstack-io/Scantree/internal/modules/repo"
	"go.uber.org/zap"
)

// groupMatchCutoff is the minimum similarity ratio for a raw group name to be
// considered a candidate for an existing group. The cutoff and the
// exactly-one-candidate rule are behavioral contracts: changing either changes
// which historical data an incoming name attaches to.
const groupMatchCutoff = 0.8

type GroupProjectMatcher interface {
	// ResolveProject maps a raw group name and project label to the
	// destination project, creating it on first sight. An ambiguous or
	// unmatched group name falls back to the "unknown" group with the raw
	// name folded into the label.
	ResolveProject(ctx context.Context, rawGroupName, rawProjectLabel string, now time.Time) (*model.Project, error)
}

type groupProjectMatcher struct {
	groups   repo.GroupRepo
	projects repo.ProjectRepo
	log      *zap.Logger
}

func NewGroupProjectMatcher(groups repo.GroupRepo, projects repo.ProjectRepo, log *zap.Logger) GroupProjectMatcher {
	return &groupProjectMatcher{groups: groups, projects: projects, log: log}
}

func (m *groupProjectMatcher) ResolveProject(ctx context.Context, rawGroupName, rawProjectLabel string, now time.Time) (*model.Project, error) {
	known, err := m.groups.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	groupID := rawGroupName
	label := rawProjectLabel
	matches := closeMatches(rawGroupName, known, groupMatchCutoff)
	if len(matches) == 1 {
		groupID = matches[0]
	} else {
		// Zero or multiple candidates: preserve the intended grouping in the
		// label instead of the group field.
		label = rawGroupName + "_" + rawProjectLabel
		groupID = model.UnknownGroupID
		m.log.Info("unresolved group name, using fallback",
			zap.String("raw_group", rawGroupName),
			zap.Int("candidates", len(matches)))
	}

	group, err := m.groups.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return m.projects.FindOrCreate(ctx, group, label, now)
}

// closeMatches returns the candidates whose similarity ratio to name reaches
// the cutoff, best first.
func closeMatches(name string, candidates []string, cutoff float64) []string {
	type scored struct {
		value string
		ratio float64
	}
	var hits []scored
	for _, c := range candidates {
		if r := similarityRatio(name, c); r >= cutoff {
			hits = append(hits, scored{value: c, ratio: r})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].ratio > hits[j].ratio })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.value)
	}
	return out
}

// similarityRatio is difflib's character-level SequenceMatcher ratio.
func similarityRatio(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
