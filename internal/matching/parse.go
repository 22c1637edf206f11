package matching

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrSchema marks a backend response that does not follow the result contract.
// Such a response is never partially trusted.
var ErrSchema = errors.New("response does not match schema")

type rawMatch struct {
	CandidateID string   `mapstructure:"candidateId"`
	UserID      string   `mapstructure:"userId"`
	Score       *float64 `mapstructure:"matchPercentage"`
	Intro       string   `mapstructure:"friendlyIntro"`
}

type rawMember struct {
	UserID      string `mapstructure:"userId"`
	CandidateID string `mapstructure:"candidateId"`
	Role        string `mapstructure:"role"`
	Reason      string `mapstructure:"reason"`
}

type rawTeam struct {
	Team         []any    `mapstructure:"team"`
	Roles        []string `mapstructure:"roles"`
	SuccessScore *float64 `mapstructure:"predictedSuccessScore"`
}

type rawCareer struct {
	RecommendedRoles []string `mapstructure:"recommendedRoles"`
	MissingSkills    []string `mapstructure:"missingSkills"`
	LearningPath     []string `mapstructure:"learningPath"`
}

type rawMentor struct {
	Text string `mapstructure:"text"`
}

func schemaErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

// strictScalars narrows weak decoding: numbers may arrive as numeric
// strings, but booleans, blanks and objects never become scores, and text
// fields only accept strings.
func strictScalars(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Float32, reflect.Float64:
		var f float64
		switch v := data.(type) {
		case float64:
			f = v
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a number", v)
			}
			f = parsed
		default:
			return nil, fmt.Errorf("expected a number, got %T", data)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%v is not a finite number", f)
		}
		return f, nil
	case reflect.String:
		if _, ok := data.(string); !ok {
			return nil, fmt.Errorf("expected a string, got %T", data)
		}
	}
	return data, nil
}

func decodeWeak(input, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       strictScalars,
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func decodeObject(body []byte, target any) error {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return schemaErr("invalid json: %v", err)
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return schemaErr("expected an object, got %T", data)
	}
	if err := decodeWeak(obj, target); err != nil {
		return schemaErr("%v", err)
	}
	return nil
}

// matchEntries returns the raw entries of a collaborator response. The
// canonical shape is {"matches": [...]}; legacy reports a bare array.
func matchEntries(body []byte) (entries []any, legacy bool, err error) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, false, schemaErr("invalid json: %v", err)
	}

	switch v := data.(type) {
	case []any:
		return v, true, nil
	case map[string]any:
		raw, ok := v["matches"]
		if !ok {
			return nil, false, schemaErr("missing matches field")
		}
		if raw == nil {
			return nil, false, nil
		}
		list, ok := raw.([]any)
		if !ok {
			return nil, false, schemaErr("matches is %T, not a list", raw)
		}
		return list, false, nil
	default:
		return nil, false, schemaErr("unexpected top-level %T", data)
	}
}

// ParseMatches validates a collaborator response against pool. Entries
// referencing candidates outside the pool are dropped; any structural problem
// rejects the whole response. The backend order is kept.
func ParseMatches(body []byte, pool []Candidate) (MatchResultSet, bool, error) {
	entries, legacy, err := matchEntries(body)
	if err != nil {
		return nil, false, err
	}

	idx := indexPool(pool)
	seen := make(map[string]struct{}, len(entries))
	result := make(MatchResultSet, 0, MaxMatches)

	for i, entry := range entries {
		if _, ok := entry.(map[string]any); !ok {
			return nil, legacy, schemaErr("match %d is %T, not an object", i, entry)
		}

		var raw rawMatch
		if err := decodeWeak(entry, &raw); err != nil {
			return nil, legacy, schemaErr("match %d: %v", i, err)
		}

		id := strings.TrimSpace(raw.CandidateID)
		if id == "" {
			id = strings.TrimSpace(raw.UserID)
		}
		if id == "" {
			return nil, legacy, schemaErr("match %d has no candidate id", i)
		}
		if raw.Score == nil || math.IsNaN(*raw.Score) {
			return nil, legacy, schemaErr("match %d has no numeric score", i)
		}

		if !idx.has(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if len(result) < MaxMatches {
			result = append(result, MatchResult{
				CandidateID:   id,
				Score:         clampScore(*raw.Score),
				Justification: strings.TrimSpace(raw.Intro),
			})
		}
	}

	return result, legacy, nil
}

// ParseTeamPlan validates a team-build response against pool with the same
// referential and clamping rules as ParseMatches.
func ParseTeamPlan(body []byte, pool []Candidate) (TeamPlan, error) {
	var raw rawTeam
	if err := decodeObject(body, &raw); err != nil {
		return TeamPlan{}, err
	}
	if raw.Team == nil {
		return TeamPlan{}, schemaErr("missing team field")
	}
	if raw.SuccessScore == nil || math.IsNaN(*raw.SuccessScore) {
		return TeamPlan{}, schemaErr("missing numeric predictedSuccessScore")
	}

	idx := indexPool(pool)
	seen := make(map[string]struct{}, len(raw.Team))
	plan := TeamPlan{
		Members:      make([]TeamMember, 0, len(raw.Team)),
		Roles:        make([]string, 0, len(raw.Roles)),
		SuccessScore: clampScore(*raw.SuccessScore),
	}

	for i, entry := range raw.Team {
		if _, ok := entry.(map[string]any); !ok {
			return TeamPlan{}, schemaErr("team member %d is %T, not an object", i, entry)
		}

		var m rawMember
		if err := decodeWeak(entry, &m); err != nil {
			return TeamPlan{}, schemaErr("team member %d: %v", i, err)
		}

		id := strings.TrimSpace(m.UserID)
		if id == "" {
			id = strings.TrimSpace(m.CandidateID)
		}
		if id == "" {
			return TeamPlan{}, schemaErr("team member %d has no user id", i)
		}
		if !idx.has(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		plan.Members = append(plan.Members, TeamMember{
			CandidateID:   id,
			Role:          strings.TrimSpace(m.Role),
			Justification: strings.TrimSpace(m.Reason),
		})
	}

	for _, role := range raw.Roles {
		if role = strings.TrimSpace(role); role != "" {
			plan.Roles = append(plan.Roles, role)
		}
	}

	return plan, nil
}

func ParseCareerPlan(body []byte) (CareerPlan, error) {
	var raw rawCareer
	if err := decodeObject(body, &raw); err != nil {
		return CareerPlan{}, err
	}
	if len(raw.RecommendedRoles) == 0 {
		return CareerPlan{}, schemaErr("missing recommendedRoles")
	}
	return CareerPlan{
		RecommendedRoles: raw.RecommendedRoles,
		MissingSkills:    nonNil(raw.MissingSkills),
		LearningPath:     nonNil(raw.LearningPath),
	}, nil
}

func ParseMentorAdvice(body []byte) (string, error) {
	var raw rawMentor
	if err := decodeObject(body, &raw); err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw.Text)
	if text == "" {
		return "", schemaErr("empty mentor text")
	}
	return text, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
