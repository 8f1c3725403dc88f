package mock

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/studiowebux/policyctl/internal/types"
)

const (
	// RequestIDHeader is read from requests and echoed on responses
	RequestIDHeader = "X-Request-Id"

	maxLogs = 1000
)

// Server represents the mock analysis server
type Server struct {
	config     *Config
	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	logs       []RequestLog
	logsMutex  sync.RWMutex
	logged     int
	workdir    string
	notifyCh   chan struct{} // signalled when a log is added
	logger     *logrus.Entry
}

// NewServer creates a new mock server
func NewServer(config *Config, workdir string, logger *logrus.Entry) *Server {
	if config == nil {
		config = &Config{Logging: true}
	}
	if config.Port == 0 {
		config.Port = 8000
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if logger == nil {
		logger = logrus.WithField("component", "mock")
	}

	s := &Server{
		config:   config,
		logs:     make([]RequestLog, 0),
		workdir:  workdir,
		notifyCh: make(chan struct{}, 1),
		logger:   logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestIDMiddleware())
	engine.GET("/health", s.health)
	engine.POST("/api/:mode", s.analyze)
	s.engine = engine

	return s
}

// Handler returns the HTTP handler serving the analysis endpoints
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listen address and serves in the background
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("mock server error")
		}
	}()

	s.logger.WithField("addr", s.GetAddress()).Info("mock analysis server started")
	return nil
}

// Run starts the server and blocks until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

// Stop stops the mock server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// requestIDMiddleware reuses the caller's request id or assigns one, and
// echoes it on the response
func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if strings.TrimSpace(rid) == "" {
			rid = uuid.New().String()
		}
		c.Set("request_id", rid)
		c.Writer.Header().Set(RequestIDHeader, rid)

		start := time.Now()
		c.Next()

		s.logger.WithFields(logrus.Fields{
			"request_id": rid,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
		}).Debug("request served")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "policyctl-mock"})
}

func fail(c *gin.Context, status int, reason string) {
	c.JSON(status, types.AnalysisResponse{Success: false, Error: reason})
}

// analyze handles POST /api/:mode
func (s *Server) analyze(c *gin.Context) {
	start := time.Now()

	mode, err := types.ParseMode(c.Param("mode"))
	if err != nil {
		fail(c, http.StatusNotFound, err.Error())
		return
	}

	var req types.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Policy) == "" {
		fail(c, http.StatusBadRequest, "policy is required")
		return
	}
	if mode.RequiresQuery() && strings.TrimSpace(req.Query) == "" {
		fail(c, http.StatusBadRequest, "query is required for simulate")
		return
	}

	resp := s.findMatchingResponse(mode, req)
	status, matchedRule := s.respond(c, mode, req, resp)

	if s.config.Logging {
		s.logRequest(RequestLog{
			Timestamp:   start,
			RequestID:   c.GetString("request_id"),
			Mode:        string(mode),
			PolicySize:  len(req.Policy),
			Query:       req.Query,
			Products:    DetectProducts(req.Policy),
			MatchedRule: matchedRule,
			Status:      status,
			Duration:    time.Since(start),
		})
	}
}

// respond writes the configured or default answer and returns the status
// and the name of the rule that produced it
func (s *Server) respond(c *gin.Context, mode types.Mode, req types.AnalysisRequest, resp *Response) (int, string) {
	if resp == nil {
		c.JSON(http.StatusOK, types.AnalysisResponse{Success: true, Result: narrative(mode, req)})
		return http.StatusOK, "default"
	}

	matchedRule := resp.Name
	if matchedRule == "" {
		matchedRule = fmt.Sprintf("%s %q", resp.Mode, resp.Match)
	}

	// Apply delay if configured
	if resp.Delay > 0 {
		select {
		case <-time.After(time.Duration(resp.Delay) * time.Millisecond):
		case <-c.Request.Context().Done():
			return 0, matchedRule
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	if resp.Raw != "" {
		c.Data(status, "text/plain; charset=utf-8", []byte(resp.Raw))
		return status, matchedRule
	}
	if resp.Error != "" {
		fail(c, status, resp.Error)
		return status, matchedRule
	}

	result := resp.Result
	if resp.ResultFile != "" {
		filePath := resp.ResultFile
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(s.workdir, filePath)
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			status = http.StatusInternalServerError
			fail(c, status, fmt.Sprintf("failed to read result file %s: %v", resp.ResultFile, err))
			return status, matchedRule
		}
		result = string(data)
	}
	if result == "" {
		result = narrative(mode, req)
	}

	c.JSON(status, types.AnalysisResponse{Success: true, Result: result})
	return status, matchedRule
}

// findMatchingResponse finds the first response for mode whose match
// string appears in the policy or query
func (s *Server) findMatchingResponse(mode types.Mode, req types.AnalysisRequest) *Response {
	for i := range s.config.Responses {
		resp := &s.config.Responses[i]
		if !strings.EqualFold(resp.Mode, string(mode)) {
			continue
		}
		if resp.Match == "" || strings.Contains(req.Policy, resp.Match) || strings.Contains(req.Query, resp.Match) {
			return resp
		}
	}
	return nil
}

// logRequest adds a request to the log and wakes Follow
func (s *Server) logRequest(log RequestLog) {
	s.logsMutex.Lock()
	defer s.logsMutex.Unlock()

	s.logged++
	log.Seq = s.logged
	s.logs = append(s.logs, log)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[len(s.logs)-maxLogs:]
	}

	// Notifications coalesce; Follow reads everything past its cursor
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// LogsSince returns the retained logs with a sequence number above seq,
// and the sequence number of the newest log
func (s *Server) LogsSince(seq int) ([]RequestLog, int) {
	s.logsMutex.RLock()
	defer s.logsMutex.RUnlock()

	var out []RequestLog
	for _, l := range s.logs {
		if l.Seq > seq {
			out = append(out, l)
		}
	}
	return out, s.logged
}

// Follow calls fn for each logged request, in order, until ctx is done
func (s *Server) Follow(ctx context.Context, fn func(RequestLog)) {
	seq := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notifyCh:
			var logs []RequestLog
			logs, seq = s.LogsSince(seq)
			for _, l := range logs {
				fn(l)
			}
		}
	}
}

// GetAddress returns the server base URL
func (s *Server) GetAddress() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return fmt.Sprintf("http://%s:%d", s.config.Host, s.config.Port)
}
