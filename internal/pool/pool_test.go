package pool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spigell/collabspace/internal/matching"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func candidates() []matching.Candidate {
	return []matching.Candidate{
		{ID: "u1", Name: "Alex", Department: "Computer Science"},
		{ID: "u2", Name: "Sarah", Department: "Business Administration"},
		{ID: "u3", Name: "David", Department: "Electrical Engineering"},
		{ID: "u4", Name: "Mia", Department: "computer science "},
	}
}

func ids(cs []matching.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSteps(t *testing.T) {
	dir := t.TempDir()
	excludeFile := filepath.Join(dir, "exclude.txt")
	if err := os.WriteFile(excludeFile, []byte("# blocked\nu2\n\n u4 \n"), 0o600); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	cases := []struct {
		name   string
		filter Filter
		expect []string
		step   Step
	}{
		{name: "exclude ids", filter: NewExcludeIDs("u1", " ", "u3"), expect: []string{"u2", "u4"}, step: Step{Initial: 4, Dropped: 2, Left: 2}},
		{name: "exclude nothing", filter: NewExcludeIDs(), expect: []string{"u1", "u2", "u3", "u4"}, step: Step{Initial: 4, Left: 4}},
		{name: "exclude file", filter: NewExcludeFile(excludeFile), expect: []string{"u1", "u3"}, step: Step{Initial: 4, Dropped: 2, Left: 2}},
		{name: "exclude file unset", filter: NewExcludeFile(""), expect: []string{"u1", "u2", "u3", "u4"}, step: Step{Initial: 4, Left: 4}},
		{name: "department", filter: NewDepartment("Computer Science"), expect: []string{"u1", "u4"}, step: Step{Initial: 4, Dropped: 2, Left: 2}},
		{name: "department unset", filter: NewDepartment(" "), expect: []string{"u1", "u2", "u3", "u4"}, step: Step{Initial: 4, Left: 4}},
		{name: "limit", filter: NewLimit(3), expect: []string{"u1", "u2", "u3"}, step: Step{Initial: 4, Dropped: 1, Left: 3}},
		{name: "no limit", filter: NewLimit(0), expect: []string{"u1", "u2", "u3", "u4"}, step: Step{Initial: 4, Left: 4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := candidates()
			out, step, err := tc.filter.Apply(context.Background(), input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := ids(out); !equal(got, tc.expect) {
				t.Fatalf("expected %v, got %v", tc.expect, got)
			}
			if step != tc.step {
				t.Fatalf("expected step %+v, got %+v", tc.step, step)
			}
			if got := ids(input); !equal(got, []string{"u1", "u2", "u3", "u4"}) {
				t.Fatalf("input was mutated: %v", got)
			}
		})
	}
}

func TestExcludeFileMissing(t *testing.T) {
	_, _, err := NewExcludeFile(filepath.Join(t.TempDir(), "missing")).Apply(context.Background(), candidates())
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestRun(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	steps := []Filter{
		NewExcludeIDs("u1"),
		NewDepartment("Business Administration", "Electrical Engineering"),
		NewLimit(1),
	}
	DisableByName(steps, "limit", "interactive")

	out, err := Run(context.Background(), zap.New(core), steps, candidates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(out); !equal(got, []string{"u2", "u3"}) {
		t.Fatalf("unexpected pool: %v", got)
	}

	if n := len(logs.FilterMessage("pool step").All()); n != 2 {
		t.Fatalf("expected 2 step logs, got %d", n)
	}
	if n := len(logs.FilterMessage("pool step disabled").All()); n != 1 {
		t.Fatalf("expected 1 disabled log, got %d", n)
	}

	statuses := Describe(steps)
	if len(statuses) != 3 || statuses[2].Enabled || statuses[2].Reason != "interactive" {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, nil, []Filter{NewLimit(1)}, candidates()); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestRunEmptyPool(t *testing.T) {
	out, err := Run(context.Background(), nil, []Filter{NewExcludeIDs("u1"), NewLimit(2)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty pool, got %v", out)
	}
}
