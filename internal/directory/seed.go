package directory

import (
	"context"
	"errors"
	"fmt"
)

// DemoUsers is the directory a fresh installation starts with.
var DemoUsers = []User{
	{
		ID:            "u1",
		Name:          "Alex Chen",
		Department:    "Computer Science",
		Year:          3,
		Skills:        []string{"React", "TypeScript", "Node.js", "Python"},
		Interests:     []string{"AI", "Sustainability", "FinTech"},
		Bio:           "Passionate full-stack dev focused on building ethical AI tools.",
		College:       "Stanford University",
		ActivityScore: 85,
		Points:        1250,
		Badges:        []string{"Top Contributor", "Fast Learner"},
	},
	{
		ID:            "u2",
		Name:          "Sarah Miller",
		Department:    "Business Administration",
		Year:          4,
		Skills:        []string{"Marketing", "Product Management", "Figma"},
		Interests:     []string{"E-commerce", "Social Impact"},
		Bio:           "Building the next generation of social commerce apps.",
		College:       "Stanford University",
		ActivityScore: 92,
		Points:        2100,
		Badges:        []string{"Visionary", "Networker"},
	},
	{
		ID:            "u3",
		Name:          "David Kumar",
		Department:    "Electrical Engineering",
		Year:          2,
		Skills:        []string{"Python", "Arduino", "C++", "Machine Learning"},
		Interests:     []string{"Robotics", "SpaceX"},
		Bio:           "Hardware enthusiast looking to integrate AI into robotics.",
		College:       "Stanford University",
		ActivityScore: 78,
		Points:        850,
		Badges:        []string{"Tech Guru"},
	},
}

var DemoProjects = []Project{
	{
		ID:            "p1",
		Name:          "EcoTrack",
		Description:   "A mobile app to track individual carbon footprints using real-time spending data.",
		CreatedBy:     "u2",
		Members:       []string{"u1", "u2"},
		RequiredRoles: []string{"Backend Dev", "Data Analyst"},
		TechStack:     []string{"React Native", "Node.js", "PostgreSQL"},
		Status:        StatusActive,
	},
	{
		ID:            "p2",
		Name:          "MediAssist AI",
		Description:   "AI-driven diagnosis assistant for rural medical camps.",
		CreatedBy:     "u1",
		Members:       []string{"u1", "u3"},
		RequiredRoles: []string{"UX Designer", "Product Lead"},
		TechStack:     []string{"Python", "TensorFlow", "Flutter"},
		Status:        StatusIdeation,
	},
}

// Seed loads the demo directory. Existing users are refreshed, existing
// projects are left untouched, so running it twice is harmless.
func (s *SQLiteStore) Seed(ctx context.Context) error {
	for _, u := range DemoUsers {
		if err := s.UpsertUser(ctx, u); err != nil {
			return fmt.Errorf("seeding users: %w", err)
		}
	}

	for _, p := range DemoProjects {
		_, err := s.GetProject(ctx, p.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("seeding projects: %w", err)
		}
		if _, err := s.CreateProject(ctx, p); err != nil {
			return fmt.Errorf("seeding projects: %w", err)
		}
	}
	return nil
}
