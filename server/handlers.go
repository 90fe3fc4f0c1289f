package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleUserStats serves GET /user_stats?user_id=<id>&date=<YYYY-MM-DD>.
// Validation happens here, before the aggregation core: the core never sees
// a missing id or malformed date. A user with no data is a valid zero-valued
// result, not an error.
func (s *Server) handleUserStats(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if _, err := uuid.Parse(userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a valid UUID"})
		return
	}

	day, ok := s.parseDate(c)
	if !ok {
		return
	}

	us, err := s.agg.UserStats(c.Request.Context(), userID, day)
	if err != nil {
		s.log.Error("user stats failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "statistics temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, us)
}

// handleGameStats serves GET /game_stats?game_id=<id>&date=<YYYY-MM-DD>.
// Both parameters are optional; without game_id the rollup spans all games.
func (s *Server) handleGameStats(c *gin.Context) {
	day, ok := s.parseDate(c)
	if !ok {
		return
	}

	gs, err := s.agg.GameStats(c.Request.Context(), c.Query("game_id"), day)
	if err != nil {
		s.log.Error("game stats failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "statistics temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, gs)
}

// handleInitialize serves POST /initialize: it drops existing data and bulk
// loads the event store from the configured telemetry files.
func (s *Server) handleInitialize(c *gin.Context) {
	report, err := s.loader.Load(c.Request.Context(), s.cfg.Ingest.EventsFile, s.cfg.Ingest.TimezonesFile)
	if err != nil {
		s.log.Error("initialize failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "database initialized",
		"report":  report,
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseDate parses the optional date query parameter in the service time
// zone. On a malformed value it writes a 400 response and returns false.
func (s *Server) parseDate(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return nil, true
	}

	day, err := time.ParseInLocation("2006-01-02", raw, s.cfg.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return nil, false
	}
	return &day, true
}
