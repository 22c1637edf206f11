package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spigell/collabspace/internal/backend"
	"github.com/spigell/collabspace/internal/matching"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubScorer struct {
	response string
	err      error
	calls    int
	query    string
}

func (s *stubScorer) answer(input string) (string, error) {
	s.calls++
	s.query = input
	return s.response, s.err
}

func (s *stubScorer) FindCollaborators(_ context.Context, query string, _ []matching.Candidate) (string, error) {
	return s.answer(query)
}

func (s *stubScorer) BuildTeam(_ context.Context, description string, _ []matching.Candidate) (string, error) {
	return s.answer(description)
}

func (s *stubScorer) NavigateCareer(_ context.Context, skills []string) (string, error) {
	return s.answer(strings.Join(skills, ","))
}

func (s *stubScorer) MentorAdvice(_ context.Context, message string) (string, error) {
	return s.answer(message)
}

const poolJSON = `[
	{"id":"u1","name":"Alex","skills":["Python"],"interests":["AI"],"department":"CS","year":3},
	{"id":"u2","name":"Sam","skills":["Design"],"interests":[],"department":"Art","year":2}
]`

func do(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestFindCollaboratorsNormalisesResponse(t *testing.T) {
	scorer := &stubScorer{response: `[
		{"userId":"u2","matchPercentage":"64","friendlyIntro":"Sam designs"},
		{"candidateId":"ghost","matchPercentage":99,"friendlyIntro":"invented"}
	]`}
	srv := New(scorer, zap.NewNop())

	rec := do(t, srv.Handler(), backend.FindCollaboratorsPath, `{"query":"designer","availableUsers":`+poolJSON+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Matches []map[string]any `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Matches) != 1 {
		t.Fatalf("expected one match, got %v", resp.Matches)
	}
	if resp.Matches[0]["candidateId"] != "u2" || resp.Matches[0]["matchPercentage"] != float64(64) {
		t.Fatalf("unexpected match: %v", resp.Matches[0])
	}
	if scorer.query != "designer" {
		t.Fatalf("unexpected query forwarded: %q", scorer.query)
	}
}

func TestFindCollaboratorsEmptyMatches(t *testing.T) {
	srv := New(&stubScorer{response: `{"matches":[]}`}, nil)

	rec := do(t, srv.Handler(), backend.FindCollaboratorsPath, `{"query":"astronaut","availableUsers":`+poolJSON+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"matches":[]}` {
		t.Fatalf("expected canonical empty list, got %s", rec.Body.String())
	}
}

func TestScorerFailuresAreBadGateway(t *testing.T) {
	cases := []struct {
		name   string
		scorer *stubScorer
		path   string
		body   string
	}{
		{
			name:   "scorer error",
			scorer: &stubScorer{err: errors.New("quota exhausted")},
			path:   backend.FindCollaboratorsPath,
			body:   `{"query":"python","availableUsers":` + poolJSON + `}`,
		},
		{
			name:   "schema error",
			scorer: &stubScorer{response: `{"team":[{"userId":"u1"}]}`},
			path:   backend.BuildTeamPath,
			body:   `{"projectDesc":"campus app","availableUsers":` + poolJSON + `}`,
		},
		{
			name:   "empty mentor text",
			scorer: &stubScorer{response: `{"text":" "}`},
			path:   backend.MentorPath,
			body:   `{"message":"help"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			srv := New(tc.scorer, zap.New(core))

			rec := do(t, srv.Handler(), tc.path, tc.body)
			if rec.Code != http.StatusBadGateway {
				t.Fatalf("expected 502, got %d", rec.Code)
			}
			if len(logs.FilterMessage("scorer failed").All()) != 1 {
				t.Fatalf("expected scorer failure to be logged")
			}
		})
	}
}

func TestInvalidRequests(t *testing.T) {
	scorer := &stubScorer{response: `{}`}
	srv := New(scorer, nil)

	cases := []struct {
		path string
		body string
	}{
		{path: backend.FindCollaboratorsPath, body: `{"availableUsers":[]}`},
		{path: backend.BuildTeamPath, body: `not json`},
		{path: backend.NavigateCareerPath, body: `{"skills":[]}`},
		{path: backend.MentorPath, body: `{"message":""}`},
	}

	for _, tc := range cases {
		rec := do(t, srv.Handler(), tc.path, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s %s: expected 400, got %d", tc.path, tc.body, rec.Code)
		}
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer must not be called for invalid requests")
	}
}

func TestHealthz(t *testing.T) {
	srv := New(&stubScorer{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestGatewayAgainstServer(t *testing.T) {
	scorer := &stubScorer{response: `{
		"team":[{"userId":"u1","role":"Backend","reason":"Python"},{"userId":"u2","role":"Design","reason":"Figma"}],
		"roles":["Backend","Design"],
		"predictedSuccessScore":77
	}`}
	ts := httptest.NewServer(New(scorer, nil).Handler())
	defer ts.Close()

	var pool []matching.Candidate
	if err := json.NewDecoder(bytes.NewBufferString(poolJSON)).Decode(&pool); err != nil {
		t.Fatalf("decode pool: %v", err)
	}

	g := matching.NewGateway(backend.New(ts.URL, time.Second, nil, 0), matching.Options{Timeout: time.Second}, nil)

	plan, err := g.BuildTeam(context.Background(), "campus app", pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.SuccessScore != 77 || len(plan.Members) != 2 || plan.Members[1].Role != "Design" {
		t.Fatalf("unexpected plan: %#v", plan)
	}

	scorer.response = `{"recommendedRoles":["Data Engineer"],"missingSkills":["SQL"],"learningPath":["1. Learn SQL"]}`
	career, err := g.NavigateCareer(context.Background(), []string{"Python"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if career.RecommendedRoles[0] != "Data Engineer" {
		t.Fatalf("unexpected career plan: %#v", career)
	}
}
