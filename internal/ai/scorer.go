package ai

import (
	"context"

	"github.com/spigell/collabspace/internal/matching"
)

// Scorer produces raw JSON answers for the scoring endpoints. Callers validate
// the output against the matching contract before relaying it.
type Scorer interface {
	FindCollaborators(ctx context.Context, query string, pool []matching.Candidate) (string, error)
	BuildTeam(ctx context.Context, description string, pool []matching.Candidate) (string, error)
	NavigateCareer(ctx context.Context, skills []string) (string, error)
	MentorAdvice(ctx context.Context, message string) (string, error)
}
