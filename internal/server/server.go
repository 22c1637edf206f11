// Package server exposes an ai.Scorer as the HTTP scoring backend consumed by
// the matching gateway. Every answer is validated against the matching
// contract before it is relayed, so clients only ever see canonical shapes.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spigell/collabspace/internal/ai"
	"github.com/spigell/collabspace/internal/backend"
	"github.com/spigell/collabspace/internal/matching"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	scorer ai.Scorer
	logger *zap.Logger
	engine *gin.Engine
}

type findRequest struct {
	Query          string               `json:"query" binding:"required"`
	AvailableUsers []matching.Candidate `json:"availableUsers"`
}

type teamRequest struct {
	ProjectDesc    string               `json:"projectDesc" binding:"required"`
	AvailableUsers []matching.Candidate `json:"availableUsers"`
}

type careerRequest struct {
	Skills []string `json:"skills" binding:"required,min=1"`
}

type mentorRequest struct {
	Message string `json:"message" binding:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(scorer ai.Scorer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		scorer: scorer,
		logger: logger,
		engine: gin.New(),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.POST(backend.FindCollaboratorsPath, s.findCollaborators)
	s.engine.POST(backend.BuildTeamPath, s.buildTeam)
	s.engine.POST(backend.NavigateCareerPath, s.navigateCareer)
	s.engine.POST(backend.MentorPath, s.mentor)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("scoring backend listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down scoring backend")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) findCollaborators(c *gin.Context) {
	var req findRequest
	if !s.bind(c, &req) {
		return
	}

	raw, err := s.scorer.FindCollaborators(c.Request.Context(), req.Query, req.AvailableUsers)
	if err != nil {
		s.upstreamError(c, "find_collaborators", err)
		return
	}

	set, _, err := matching.ParseMatches([]byte(raw), req.AvailableUsers)
	if err != nil {
		s.upstreamError(c, "find_collaborators", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": set})
}

func (s *Server) buildTeam(c *gin.Context) {
	var req teamRequest
	if !s.bind(c, &req) {
		return
	}

	raw, err := s.scorer.BuildTeam(c.Request.Context(), req.ProjectDesc, req.AvailableUsers)
	if err != nil {
		s.upstreamError(c, "build_team", err)
		return
	}

	plan, err := matching.ParseTeamPlan([]byte(raw), req.AvailableUsers)
	if err != nil {
		s.upstreamError(c, "build_team", err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (s *Server) navigateCareer(c *gin.Context) {
	var req careerRequest
	if !s.bind(c, &req) {
		return
	}

	raw, err := s.scorer.NavigateCareer(c.Request.Context(), req.Skills)
	if err != nil {
		s.upstreamError(c, "navigate_career", err)
		return
	}

	plan, err := matching.ParseCareerPlan([]byte(raw))
	if err != nil {
		s.upstreamError(c, "navigate_career", err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (s *Server) mentor(c *gin.Context) {
	var req mentorRequest
	if !s.bind(c, &req) {
		return
	}

	raw, err := s.scorer.MentorAdvice(c.Request.Context(), req.Message)
	if err != nil {
		s.upstreamError(c, "mentor", err)
		return
	}

	text, err := matching.ParseMentorAdvice([]byte(raw))
	if err != nil {
		s.upstreamError(c, "mentor", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Server) bind(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

// upstreamError answers 502 so that gateways fall back instead of trusting
// a partial answer.
func (s *Server) upstreamError(c *gin.Context, operation string, err error) {
	s.logger.Warn("scorer failed",
		zap.String("operation", operation),
		zap.Bool("schema_error", errors.Is(err, matching.ErrSchema)),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusBadGateway, errorResponse{Error: "scoring backend unavailable"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
