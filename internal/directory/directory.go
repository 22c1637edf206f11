package directory

import (
	"errors"
	"time"

	"github.com/spigell/collabspace/internal/matching"
)

// ErrNotFound is returned when a user or project does not exist.
var ErrNotFound = errors.New("not found")

type ProjectStatus string

const (
	StatusIdeation  ProjectStatus = "Ideation"
	StatusActive    ProjectStatus = "Active"
	StatusCompleted ProjectStatus = "Completed"
)

// User is a student profile. Only the public part of it is ever handed to
// the matching gateway, see Candidate.
type User struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Department    string   `json:"department"`
	Year          int      `json:"year"`
	Skills        []string `json:"skills"`
	Interests     []string `json:"interests"`
	Bio           string   `json:"bio,omitempty"`
	College       string   `json:"college,omitempty"`
	ActivityScore int      `json:"activityScore"`
	Points        int      `json:"points"`
	Badges        []string `json:"badges,omitempty"`
}

// Candidate returns the matching view of u.
func (u User) Candidate() matching.Candidate {
	return matching.Candidate{
		ID:         u.ID,
		Name:       u.Name,
		Skills:     append([]string(nil), u.Skills...),
		Interests:  append([]string(nil), u.Interests...),
		Department: u.Department,
		Year:       u.Year,
	}
}

type Project struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	CreatedBy     string        `json:"createdBy"`
	Members       []string      `json:"members"`
	RequiredRoles []string      `json:"requiredRoles"`
	TechStack     []string      `json:"techStack"`
	Status        ProjectStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// HasMember reports whether userID is on the project.
func (p Project) HasMember(userID string) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}
