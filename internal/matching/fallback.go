package matching

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	hitScoreMin       = 85
	hitScoreMax       = 99
	potentialScoreMin = 70
	potentialScoreMax = 85
	potentialCount    = 2
	minTermLength     = 3

	fallbackTeamSize     = 3
	fallbackTeamScore    = 92
	fallbackRole         = "Contributor"
	fallbackIntroPrefix  = "[Demo AI]"
	fallbackMentorPrefix = "[Demo Mentor]"
)

var (
	fallbackTeamRoles = []string{"Lead Developer", "UX Designer", "Data Scientist"}

	fallbackCareer = CareerPlan{
		RecommendedRoles: []string{"Product Manager", "Full Stack Developer", "AI Researcher"},
		MissingSkills:    []string{"Leadership", "Cloud Architecture"},
		LearningPath: []string{
			"1. Build a portfolio project",
			"2. Contribute to open source",
			"3. Network with alumni",
		},
	}
)

// Rand is the randomness source used for fallback scores.
type Rand interface {
	IntN(n int) int
}

// NewSeededRand returns a deterministic source for reproducible scores.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Fallback approximates the backend contract without any network access.
type Fallback struct {
	mu  sync.Mutex
	rnd Rand
}

func NewFallback(rnd Rand) *Fallback {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Fallback{rnd: rnd}
}

// between returns a value in [lo, hi).
func (f *Fallback) between(lo, hi int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return lo + f.rnd.IntN(hi-lo)
}

// queryTerms lower-cases query and keeps whitespace separated terms longer
// than two characters.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := fields[:0]
	for _, term := range fields {
		if utf8.RuneCountInString(term) >= minTermLength {
			terms = append(terms, term)
		}
	}
	return terms
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Matches runs the substring heuristic over pool. With no hit the first
// candidates of the pool are offered as potential fits, so the result is only
// empty when the pool is.
func (f *Fallback) Matches(query string, pool []Candidate) MatchResultSet {
	query = strings.TrimSpace(query)
	terms := queryTerms(query)

	result := make(MatchResultSet, 0, MaxMatches)
	if len(terms) > 0 {
		for _, c := range pool {
			if !containsAny(c.searchText(), terms) {
				continue
			}
			result = append(result, MatchResult{
				CandidateID:   c.ID,
				Score:         f.between(hitScoreMin, hitScoreMax),
				Justification: fmt.Sprintf("%s I found %s because they match your search for \"%s\".", fallbackIntroPrefix, c.Name, query),
			})
			if len(result) == MaxMatches {
				return result
			}
		}
	}

	if len(result) > 0 {
		return result
	}

	for i := 0; i < len(pool) && i < potentialCount; i++ {
		result = append(result, MatchResult{
			CandidateID:   pool[i].ID,
			Score:         f.between(potentialScoreMin, potentialScoreMax),
			Justification: fmt.Sprintf("%s While not an exact match, %s has great potential.", fallbackIntroPrefix, pool[i].Name),
		})
	}

	return result
}

// TeamPlan takes the first members of the pool in order, using each member's
// first skill as the role.
func (f *Fallback) TeamPlan(pool []Candidate) TeamPlan {
	plan := TeamPlan{
		Members:      make([]TeamMember, 0, fallbackTeamSize),
		Roles:        append([]string(nil), fallbackTeamRoles...),
		SuccessScore: fallbackTeamScore,
	}

	if len(pool) == 0 {
		plan.Roles = []string{}
		plan.SuccessScore = 0
		return plan
	}

	for i := 0; i < len(pool) && i < fallbackTeamSize; i++ {
		c := pool[i]
		role := fallbackRole
		if len(c.Skills) > 0 && strings.TrimSpace(c.Skills[0]) != "" {
			role = strings.TrimSpace(c.Skills[0])
		}
		plan.Members = append(plan.Members, TeamMember{
			CandidateID:   c.ID,
			Role:          role,
			Justification: fmt.Sprintf("%s %s is a strong candidate.", fallbackIntroPrefix, c.Name),
		})
	}

	return plan
}

func (f *Fallback) CareerPlan() CareerPlan {
	return CareerPlan{
		RecommendedRoles: append([]string(nil), fallbackCareer.RecommendedRoles...),
		MissingSkills:    append([]string(nil), fallbackCareer.MissingSkills...),
		LearningPath:     append([]string(nil), fallbackCareer.LearningPath...),
	}
}

func (f *Fallback) MentorAdvice(message string) string {
	return fmt.Sprintf("%s That's a great question about \"%s\". I'd recommend focusing on your strengths and connecting with peers in the Team Builder.",
		fallbackMentorPrefix, strings.TrimSpace(message))
}
