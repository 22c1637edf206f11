// Package pool prepares the candidate snapshot handed to the matching
// gateway. Steps run in order, each returning a fresh slice.
package pool

import (
	"context"
	"fmt"

	"github.com/spigell/collabspace/internal/matching"

	"go.uber.org/zap"
)

// Filter is a single preparation step applied to a candidate pool.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, candidates []matching.Candidate) ([]matching.Candidate, Step, error)
}

// Step describes the result of executing a preparation step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// DisableByName marks the filter with the given name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes steps sequentially over a copy of candidates.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, candidates []matching.Candidate) ([]matching.Candidate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	current := append([]matching.Candidate(nil), candidates...)
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("pool step disabled", zap.String("name", step.Name()))
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, info, err := step.Apply(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Debug("pool step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		current = next
	}

	return current, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// toggle carries the enable/disable bookkeeping shared by all steps.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func keep(candidates []matching.Candidate, pred func(matching.Candidate) bool) ([]matching.Candidate, Step) {
	out := make([]matching.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out, Step{Initial: len(candidates), Dropped: len(candidates) - len(out), Left: len(out)}
}
