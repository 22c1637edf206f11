package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/collabspace/internal/matching"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	department     TEXT NOT NULL DEFAULT '',
	year           INTEGER NOT NULL DEFAULT 0,
	skills         TEXT NOT NULL DEFAULT '[]',
	interests      TEXT NOT NULL DEFAULT '[]',
	bio            TEXT NOT NULL DEFAULT '',
	college        TEXT NOT NULL DEFAULT '',
	activity_score INTEGER NOT NULL DEFAULT 0,
	points         INTEGER NOT NULL DEFAULT 0,
	badges         TEXT NOT NULL DEFAULT '[]',
	updated_at     DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS projects (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	created_by     TEXT NOT NULL DEFAULT '',
	required_roles TEXT NOT NULL DEFAULT '[]',
	tech_stack     TEXT NOT NULL DEFAULT '[]',
	status         TEXT NOT NULL DEFAULT 'Ideation',
	created_at     DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS project_members (
	project_id TEXT NOT NULL REFERENCES projects(id),
	user_id    TEXT NOT NULL,
	joined_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (project_id, user_id)
);`

// SQLiteStore keeps user profiles and projects in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One writer at a time keeps sqlite from answering SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, department, year, skills, interests, bio, college, activity_score, points, badges
		FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return u, nil
}

// UpsertUser inserts u or replaces the stored profile with the same id.
func (s *SQLiteStore) UpsertUser(ctx context.Context, u User) error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id is required")
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, name, department, year, skills, interests, bio, college, activity_score, points, badges, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			department = excluded.department,
			year = excluded.year,
			skills = excluded.skills,
			interests = excluded.interests,
			bio = excluded.bio,
			college = excluded.college,
			activity_score = excluded.activity_score,
			points = excluded.points,
			badges = excluded.badges,
			updated_at = excluded.updated_at`,
		u.ID, u.Name, u.Department, u.Year,
		encodeList(u.Skills), encodeList(u.Interests),
		u.Bio, u.College, u.ActivityScore, u.Points, encodeList(u.Badges),
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting user %s: %w", u.ID, err)
	}
	return nil
}

// ListUsers returns all users ordered by id.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, department, year, skills, interests, bio, college, activity_score, points, badges
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// Pool returns a read-only candidate snapshot of all users.
func (s *SQLiteStore) Pool(ctx context.Context) ([]matching.Candidate, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	pool := make([]matching.Candidate, 0, len(users))
	for _, u := range users {
		pool = append(pool, u.Candidate())
	}
	return pool, nil
}

// CreateProject stores p and returns its id, generating one when p.ID is
// empty. The creator is always a member.
func (s *SQLiteStore) CreateProject(ctx context.Context, p Project) (string, error) {
	if strings.TrimSpace(p.Name) == "" {
		return "", errors.New("project name is required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = StatusIdeation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO projects (id, name, description, created_by, required_roles, tech_stack, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.CreatedBy,
		encodeList(p.RequiredRoles), encodeList(p.TechStack), string(p.Status), s.now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("creating project %s: %w", p.Name, err)
	}

	members := p.Members
	if p.CreatedBy != "" && !p.HasMember(p.CreatedBy) {
		members = append([]string{p.CreatedBy}, members...)
	}
	for _, m := range members {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO project_members (project_id, user_id) VALUES (?, ?)`, p.ID, m); err != nil {
			return "", fmt.Errorf("adding member %s: %w", m, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit project: %w", err)
	}
	return p.ID, nil
}

// ListProjects returns projects newest first, with their members.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, created_by, required_roles, tech_stack, status, created_at
		FROM projects ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	projects := make([]Project, 0)
	for rows.Next() {
		var (
			p            Project
			roles, stack string
			status       string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &roles, &stack, &status, &p.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p.RequiredRoles = decodeList(roles)
		p.TechStack = decodeList(stack)
		p.Status = ProjectStatus(status)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range projects {
		members, err := s.members(ctx, projects[i].ID)
		if err != nil {
			return nil, err
		}
		projects[i].Members = members
	}
	return projects, nil
}

// GetProject returns a single project with its members.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*Project, error) {
	var (
		p            Project
		roles, stack string
		status       string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description, created_by, required_roles, tech_stack, status, created_at
		FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &roles, &stack, &status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}
	p.RequiredRoles = decodeList(roles)
	p.TechStack = decodeList(stack)
	p.Status = ProjectStatus(status)

	if p.Members, err = s.members(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddMember puts userID on the project. Adding an existing member is a no-op.
func (s *SQLiteStore) AddMember(ctx context.Context, projectID, userID string) error {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO project_members (project_id, user_id) VALUES (?, ?)`, projectID, userID)
	if err != nil {
		return fmt.Errorf("adding member %s to project %s: %w", userID, projectID, err)
	}
	return nil
}

func (s *SQLiteStore) members(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM project_members WHERE project_id = ? ORDER BY joined_at, rowid`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing members of %s: %w", projectID, err)
	}
	defer rows.Close()

	members := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	var (
		u                         User
		skills, interests, badges string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Department, &u.Year, &skills, &interests, &u.Bio, &u.College, &u.ActivityScore, &u.Points, &badges); err != nil {
		return nil, err
	}
	u.Skills = decodeList(skills)
	u.Interests = decodeList(interests)
	u.Badges = decodeList(badges)
	return &u, nil
}

func encodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(raw string) []string {
	items := []string{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return items
}
