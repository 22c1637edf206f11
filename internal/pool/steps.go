package pool

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spigell/collabspace/internal/matching"
)

type excludeIDsFilter struct {
	toggle
	ids map[string]struct{}
}

// NewExcludeIDs drops candidates whose id is listed, typically the requester
// and the current members of a project.
func NewExcludeIDs(ids ...string) Filter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return &excludeIDsFilter{ids: set}
}

func (f *excludeIDsFilter) Name() string { return "exclude_ids" }

func (f *excludeIDsFilter) Apply(_ context.Context, candidates []matching.Candidate) ([]matching.Candidate, Step, error) {
	out, step := keep(candidates, func(c matching.Candidate) bool {
		_, excluded := f.ids[c.ID]
		return !excluded
	})
	return out, step, nil
}

func (f *excludeIDsFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"ids": strconv.Itoa(len(f.ids))},
	}
}

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile drops candidates whose id appears in the file at path, one
// id per line. Blank lines and lines starting with # are ignored. An empty
// path makes the step a no-op.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Apply(ctx context.Context, candidates []matching.Candidate) ([]matching.Candidate, Step, error) {
	if f.path == "" {
		return candidates, Step{Initial: len(candidates), Left: len(candidates)}, nil
	}

	ids, err := readIDs(f.path)
	if err != nil {
		return nil, Step{}, fmt.Errorf("reading excluded ids: %w", err)
	}

	return NewExcludeIDs(ids...).Apply(ctx, candidates)
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

func readIDs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, scanner.Err()
}

type departmentFilter struct {
	toggle
	departments []string
}

// NewDepartment keeps candidates from one of the given departments, compared
// case-insensitively. With no departments every candidate is kept.
func NewDepartment(departments ...string) Filter {
	cleaned := make([]string, 0, len(departments))
	for _, d := range departments {
		if d = strings.TrimSpace(d); d != "" {
			cleaned = append(cleaned, d)
		}
	}
	return &departmentFilter{departments: cleaned}
}

func (f *departmentFilter) Name() string { return "department" }

func (f *departmentFilter) Apply(_ context.Context, candidates []matching.Candidate) ([]matching.Candidate, Step, error) {
	if len(f.departments) == 0 {
		return candidates, Step{Initial: len(candidates), Left: len(candidates)}, nil
	}

	out, step := keep(candidates, func(c matching.Candidate) bool {
		for _, d := range f.departments {
			if strings.EqualFold(strings.TrimSpace(c.Department), d) {
				return true
			}
		}
		return false
	})
	return out, step, nil
}

func (f *departmentFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"departments": strings.Join(f.departments, ",")},
	}
}

type limitFilter struct {
	toggle
	limit int
}

// NewLimit keeps at most n candidates, preserving order. A non-positive n
// keeps everything.
func NewLimit(n int) Filter {
	return &limitFilter{limit: n}
}

func (f *limitFilter) Name() string { return "limit" }

func (f *limitFilter) Apply(_ context.Context, candidates []matching.Candidate) ([]matching.Candidate, Step, error) {
	if f.limit <= 0 || len(candidates) <= f.limit {
		return candidates, Step{Initial: len(candidates), Left: len(candidates)}, nil
	}

	out := append([]matching.Candidate(nil), candidates[:f.limit]...)
	return out, Step{Initial: len(candidates), Dropped: len(candidates) - f.limit, Left: f.limit}, nil
}

func (f *limitFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"max": strconv.Itoa(f.limit)},
	}
}
