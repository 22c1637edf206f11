package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/collabspace/internal/matching"
	"github.com/spigell/collabspace/internal/utils"

	"go.uber.org/zap"
)

const (
	FindCollaboratorsPath = "/ai/find-collaborators"
	BuildTeamPath         = "/ai/build-team"
	NavigateCareerPath    = "/ai/navigate-career"
	MentorPath            = "/ai/mentor"

	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "spigell/collabspace"

	// Bodies above this size are not a plausible scoring response.
	maxBodySize = 4 << 20
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status: %s", e.Status)
	}
	return fmt.Sprintf("bad status: %s: %s", e.Status, e.Body)
}

// Client talks to the remote scoring backend. It implements matching.Remote.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string

	logger    *zap.Logger
	maxLogLen int
}

type findRequest struct {
	Query          string               `json:"query"`
	AvailableUsers []matching.Candidate `json:"availableUsers"`
}

type teamRequest struct {
	ProjectDesc    string               `json:"projectDesc"`
	AvailableUsers []matching.Candidate `json:"availableUsers"`
}

type careerRequest struct {
	Skills []string `json:"skills"`
}

type mentorRequest struct {
	Message string `json:"message"`
}

// New returns a client for baseURL. The per-request deadline comes from the
// caller's context; timeout only guards against a missing one.
func New(baseURL string, timeout time.Duration, logger *zap.Logger, maxLogLen int) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * matching.DefaultTimeout
	}
	if maxLogLen <= 0 {
		maxLogLen = 200
	}

	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  userAgent,
		logger:     logger,
		maxLogLen:  maxLogLen,
	}
}

func (c *Client) FindCollaborators(ctx context.Context, query string, pool []matching.Candidate) ([]byte, error) {
	return c.post(ctx, FindCollaboratorsPath, findRequest{Query: query, AvailableUsers: nonNilPool(pool)})
}

func (c *Client) BuildTeam(ctx context.Context, description string, pool []matching.Candidate) ([]byte, error) {
	return c.post(ctx, BuildTeamPath, teamRequest{ProjectDesc: description, AvailableUsers: nonNilPool(pool)})
}

func (c *Client) NavigateCareer(ctx context.Context, skills []string) ([]byte, error) {
	return c.post(ctx, NavigateCareerPath, careerRequest{Skills: skills})
}

func (c *Client) MentorAdvice(ctx context.Context, message string) ([]byte, error) {
	return c.post(ctx, MentorPath, mentorRequest{Message: message})
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}

	req = c.setHeaders(req)

	c.logger.Debug("make request", zap.String("url", req.URL.String()), zap.Int("payload_length", len(body)))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   utils.TruncateForLog(string(data), c.maxLogLen),
		}
	}

	c.logger.Debug("got response from scoring backend",
		zap.String("path", path),
		zap.Int("response_length", len(data)),
		zap.String("response_preview", utils.TruncateForLog(string(data), c.maxLogLen)),
	)

	return data, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	return io.ReadAll(io.LimitReader(reader, maxBodySize))
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("User-Agent", c.UserAgent)

	return req
}

func nonNilPool(pool []matching.Candidate) []matching.Candidate {
	if pool == nil {
		return []matching.Candidate{}
	}
	return pool
}
