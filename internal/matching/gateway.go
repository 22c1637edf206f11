package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single remote attempt.
const DefaultTimeout = 20 * time.Second

// ErrEmptyRequest is returned when a blank query is issued against an empty
// pool, which is a usage error rather than "no match".
var ErrEmptyRequest = errors.New("query is blank and candidate pool is empty")

// Remote is the scoring backend. Implementations return the raw response body
// of a successful call; parsing and validation happen in the gateway.
type Remote interface {
	FindCollaborators(ctx context.Context, query string, pool []Candidate) ([]byte, error)
	BuildTeam(ctx context.Context, description string, pool []Candidate) ([]byte, error)
	NavigateCareer(ctx context.Context, skills []string) ([]byte, error)
	MentorAdvice(ctx context.Context, message string) ([]byte, error)
}

type Options struct {
	Mode    Mode
	Timeout time.Duration
	// Rand feeds fallback scores. A nil Rand uses the global source.
	Rand Rand
}

// Gateway sends matching requests to the remote backend and degrades to the
// Fallback matcher on any failure, so callers always get a well-formed result.
type Gateway struct {
	remote   Remote
	fallback *Fallback
	mode     Mode
	timeout  time.Duration
	logger   *zap.Logger
}

func NewGateway(remote Remote, opts Options, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeOnline
	}
	if remote == nil {
		mode = ModeOffline
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Gateway{
		remote:   remote,
		fallback: NewFallback(opts.Rand),
		mode:     mode,
		timeout:  timeout,
		logger:   logger,
	}
}

func (g *Gateway) Mode() Mode { return g.mode }

// attempt runs call against the remote unless the gateway is offline, and
// parses the body with parse. Both transport and schema errors yield RemoteFailure.
func attempt[T any](ctx context.Context, g *Gateway, call func(context.Context) ([]byte, error), parse func([]byte) (T, error)) Outcome[T] {
	if g.mode == ModeOffline {
		return skipped[T]()
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := call(callCtx)
	if err != nil {
		return failure[T](err)
	}

	v, err := parse(body)
	if err != nil {
		return failure[T](err)
	}

	return success(v)
}

// degrade reports whether the fallback should be used for outcome. It returns
// the caller's context error when the caller has gone away.
func degrade[T any](ctx context.Context, g *Gateway, op string, out Outcome[T]) error {
	switch out.Kind {
	case RemoteFailure:
		if ctxErr := ctx.Err(); ctxErr != nil {
			g.logger.Debug("request abandoned by caller", zap.String("operation", op), zap.Error(ctxErr))
			return ctxErr
		}
		g.logger.Warn("scoring backend failed, using fallback",
			zap.String("operation", op),
			zap.Error(out.Reason),
			zap.Bool("schema_error", errors.Is(out.Reason, ErrSchema)),
		)
	case OfflineSkipped:
		g.logger.Debug("offline mode, using fallback", zap.String("operation", op))
	}
	return nil
}

// FindCollaborators returns up to MaxMatches candidates from pool for query.
// A blank query yields an empty set without contacting the backend.
func (g *Gateway) FindCollaborators(ctx context.Context, query string, pool []Candidate) (MatchResultSet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		if len(pool) == 0 {
			return MatchResultSet{}, ErrEmptyRequest
		}
		g.logger.Debug("blank query, nothing to match")
		return MatchResultSet{}, nil
	}

	out := attempt(ctx, g,
		func(ctx context.Context) ([]byte, error) {
			return g.remote.FindCollaborators(ctx, query, pool)
		},
		func(body []byte) (MatchResultSet, error) {
			set, legacy, err := ParseMatches(body, pool)
			if err == nil && legacy {
				g.logger.Debug("scoring backend replied with legacy bare array")
			}
			return set, err
		},
	)

	if out.Kind == RemoteSuccess {
		return out.Value, nil
	}
	if err := degrade(ctx, g, "find_collaborators", out); err != nil {
		return MatchResultSet{}, err
	}
	return g.fallback.Matches(query, pool), nil
}

// BuildTeam proposes a team for description from pool.
func (g *Gateway) BuildTeam(ctx context.Context, description string, pool []Candidate) (TeamPlan, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		if len(pool) == 0 {
			return emptyTeamPlan(), ErrEmptyRequest
		}
		return emptyTeamPlan(), nil
	}

	out := attempt(ctx, g,
		func(ctx context.Context) ([]byte, error) {
			return g.remote.BuildTeam(ctx, description, pool)
		},
		func(body []byte) (TeamPlan, error) {
			return ParseTeamPlan(body, pool)
		},
	)

	if out.Kind == RemoteSuccess {
		return out.Value, nil
	}
	if err := degrade(ctx, g, "build_team", out); err != nil {
		return emptyTeamPlan(), err
	}
	return g.fallback.TeamPlan(pool), nil
}

// NavigateCareer suggests roles and a learning path for skills.
func (g *Gateway) NavigateCareer(ctx context.Context, skills []string) (CareerPlan, error) {
	cleaned := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return CareerPlan{}, fmt.Errorf("at least one skill is required")
	}

	out := attempt(ctx, g,
		func(ctx context.Context) ([]byte, error) {
			return g.remote.NavigateCareer(ctx, cleaned)
		},
		ParseCareerPlan,
	)

	if out.Kind == RemoteSuccess {
		return out.Value, nil
	}
	if err := degrade(ctx, g, "navigate_career", out); err != nil {
		return CareerPlan{}, err
	}
	return g.fallback.CareerPlan(), nil
}

// MentorAdvice answers a free-text question.
func (g *Gateway) MentorAdvice(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("message must not be empty")
	}

	out := attempt(ctx, g,
		func(ctx context.Context) ([]byte, error) {
			return g.remote.MentorAdvice(ctx, message)
		},
		ParseMentorAdvice,
	)

	if out.Kind == RemoteSuccess {
		return out.Value, nil
	}
	if err := degrade(ctx, g, "mentor", out); err != nil {
		return "", err
	}
	return g.fallback.MentorAdvice(message), nil
}

func emptyTeamPlan() TeamPlan {
	return TeamPlan{Members: []TeamMember{}, Roles: []string{}}
}
