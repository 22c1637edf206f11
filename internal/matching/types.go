package matching

import "strings"

// MaxMatches caps the number of entries in a MatchResultSet.
const MaxMatches = 3

// Candidate is a participant eligible to be matched. Only public profile data
// is carried here; it is serialised as-is into backend requests.
type Candidate struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Skills     []string `json:"skills"`
	Interests  []string `json:"interests"`
	Department string   `json:"department"`
	Year       int      `json:"year"`
}

// searchText returns the lower-cased blob the fallback matcher searches in.
func (c Candidate) searchText() string {
	parts := make([]string, 0, 2+len(c.Skills)+len(c.Interests))
	parts = append(parts, c.Name, c.Department)
	parts = append(parts, c.Skills...)
	parts = append(parts, c.Interests...)
	return strings.ToLower(strings.Join(parts, " "))
}

// MatchQuery is a free-text request together with the pool it is evaluated against.
type MatchQuery struct {
	Text string
	Pool []Candidate
}

type MatchResult struct {
	CandidateID   string `json:"candidateId"`
	Score         int    `json:"matchPercentage"`
	Justification string `json:"friendlyIntro"`
}

// MatchResultSet is ordered by descending score and holds at most MaxMatches
// entries. An empty set means no good match.
type MatchResultSet []MatchResult

// IDs returns candidate ids in result order.
func (s MatchResultSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for _, r := range s {
		ids = append(ids, r.CandidateID)
	}
	return ids
}

type TeamMember struct {
	CandidateID   string `json:"userId"`
	Role          string `json:"role"`
	Justification string `json:"reason"`
}

type TeamPlan struct {
	Members      []TeamMember `json:"team"`
	Roles        []string     `json:"roles"`
	SuccessScore int          `json:"predictedSuccessScore"`
}

// CareerPlan is a suggested career direction for a given skill set.
type CareerPlan struct {
	RecommendedRoles []string `json:"recommendedRoles"`
	MissingSkills    []string `json:"missingSkills"`
	LearningPath     []string `json:"learningPath"`
}

type poolIndex map[string]Candidate

func indexPool(pool []Candidate) poolIndex {
	idx := make(poolIndex, len(pool))
	for _, c := range pool {
		if _, ok := idx[c.ID]; ok {
			continue
		}
		idx[c.ID] = c
	}
	return idx
}

func (p poolIndex) has(id string) bool {
	_, ok := p[id]
	return ok
}

func clampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(v + 0.5)
}
