package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/collabspace/internal/matching"
	"github.com/spigell/collabspace/internal/utils"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
}

var (
	//go:embed prompts/system.md
	systemPrompt string
	//go:embed prompts/find_collaborators.md
	findCollaboratorsTemplate string
	//go:embed prompts/build_team.md
	buildTeamTemplate string
	//go:embed prompts/navigate_career.md
	navigateCareerTemplate string
	//go:embed prompts/mentor.md
	mentorTemplate string
)

const (
	defaultMaxLogLength = 200
	maxUserInputRunes   = 600
)

var inputReplacer = strings.NewReplacer("[", "(", "]", ")", "{{", "(", "}}", ")")

// Scorer implements ai.Scorer on top of a Gemini generator.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) FindCollaborators(ctx context.Context, query string, pool []matching.Candidate) (string, error) {
	poolJSON, err := marshalPool(pool)
	if err != nil {
		return "", err
	}

	prompt := render(findCollaboratorsTemplate,
		"{{QUERY}}", sanitizeUserInput(query),
		"{{POOL_JSON}}", poolJSON,
	)
	return s.generate(ctx, "find_collaborators", prompt)
}

func (s *Scorer) BuildTeam(ctx context.Context, description string, pool []matching.Candidate) (string, error) {
	poolJSON, err := marshalPool(pool)
	if err != nil {
		return "", err
	}

	prompt := render(buildTeamTemplate,
		"{{DESCRIPTION}}", sanitizeUserInput(description),
		"{{POOL_JSON}}", poolJSON,
	)
	return s.generate(ctx, "build_team", prompt)
}

func (s *Scorer) NavigateCareer(ctx context.Context, skills []string) (string, error) {
	prompt := render(navigateCareerTemplate, "{{SKILLS}}", sanitizeUserInput(strings.Join(skills, ", ")))
	return s.generate(ctx, "navigate_career", prompt)
}

func (s *Scorer) MentorAdvice(ctx context.Context, message string) (string, error) {
	prompt := render(mentorTemplate, "{{MESSAGE}}", sanitizeUserInput(message))
	return s.generate(ctx, "mentor", prompt)
}

func (s *Scorer) generate(ctx context.Context, operation, prompt string) (string, error) {
	if s.generator == nil {
		return "", errors.New("gemini generator is not configured")
	}

	s.logger.Debug("gemini generate content request",
		zap.String("operation", operation),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return "", err
	}

	s.logger.Debug("gemini generate content response",
		zap.String("operation", operation),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	cleaned := extractJSON(raw)
	if !json.Valid([]byte(cleaned)) {
		return "", fmt.Errorf("%s: gemini response is not valid json", operation)
	}

	return cleaned, nil
}

func marshalPool(pool []matching.Candidate) (string, error) {
	if pool == nil {
		pool = []matching.Candidate{}
	}
	data, err := json.MarshalIndent(pool, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate pool: %w", err)
	}
	return string(data), nil
}

// render substitutes placeholder/value pairs in a single pass, so values are
// never expanded again.
func render(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

// sanitizeUserInput keeps user text on one line, neutralises section markers
// and caps its length so it cannot reshape the prompt.
func sanitizeUserInput(s string) string {
	s = utils.SingleLine(inputReplacer.Replace(s))
	if s == "" {
		return "none"
	}
	if utf8.RuneCountInString(s) > maxUserInputRunes {
		s = string([]rune(s)[:maxUserInputRunes])
	}
	return s
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
