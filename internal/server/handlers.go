package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"minebot/src/activity"
	"minebot/src/bot"

	"github.com/labstack/echo/v4"
)

const defaultGoal = "Explore"

type goalRequest struct {
	Goal string `json:"goal"`
}

// GET /
func (s *Server) handleDashboard(c echo.Context) error {
	page, err := renderDashboard(dashboardData{
		BotName: s.botName,
		Server:  s.server,
		Status:  s.bot.Status(),
		Logs:    s.bot.Log().Recent(RecentLogs),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to render dashboard")
		return c.String(http.StatusInternalServerError, "Error rendering dashboard")
	}
	return c.HTMLBlob(http.StatusOK, page)
}

// GET /start
func (s *Server) handleStart(c echo.Context) error {
	err := s.bot.Start(s.runCtx)
	if errors.Is(err, bot.ErrAlreadyRunning) {
		return c.String(http.StatusOK, "⚪ Bot already running")
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to start bot")
		return c.String(http.StatusInternalServerError, "Error starting bot")
	}
	return c.String(http.StatusOK, "🟢 Bot started")
}

// GET /stop
func (s *Server) handleStop(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), StopTimeout)
	defer cancel()

	// The bot is already idle when Stop returns, even if the wait timed out.
	if err := s.bot.Stop(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Run loop still finishing its cycle")
	}
	return c.String(http.StatusOK, "🔴 Bot stopped")
}

// GET /status
func (s *Server) handleStatus(c echo.Context) error {
	if s.bot.Status().Active {
		return c.String(http.StatusOK, "🟢 ONLINE")
	}
	return c.String(http.StatusOK, "🔴 OFFLINE")
}

// POST /goal
func (s *Server) handleGoal(c echo.Context) error {
	var req *goalRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil || req == nil {
		s.logger.Debug().Err(err).Msg("Rejected goal update")
		return c.String(http.StatusBadRequest, "Error updating goal")
	}

	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		goal = defaultGoal
	}
	s.bot.SetGoal(goal)
	return c.String(http.StatusOK, "Goal updated")
}

// GET /get_logs
func (s *Server) handleGetLogs(c echo.Context) error {
	fragment, err := renderLogs(s.bot.Log().Recent(RecentLogs))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to render logs")
		return c.String(http.StatusInternalServerError, "Error rendering logs")
	}
	return c.HTMLBlob(http.StatusOK, fragment)
}

// GET /clear_logs
func (s *Server) handleClearLogs(c echo.Context) error {
	s.bot.Log().Clear()
	return c.String(http.StatusOK, "Logs cleared")
}

// GET /health
func (s *Server) handleHealth(c echo.Context) error {
	health := s.bot.Health()
	if s.mirror != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), MirrorTimeout)
		defer cancel()

		health.Redis = "ok"
		if err := s.mirror.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Memory mirror ping failed")
			health.Redis = "unavailable"
		}
	}
	return c.JSON(http.StatusOK, health)
}

// GET /api/status
func (s *Server) handleAPIStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.bot.Status())
}

// GET /api/memory?limit=N
func (s *Server) handleAPIMemory(c echo.Context) error {
	limit := RecentLogs
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > activity.MemoryCapacity {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = n
	}

	// The mirror holds the active session; local memory covers the rest.
	if session := s.bot.Status().Session; s.mirror != nil && session != "" {
		ctx, cancel := context.WithTimeout(c.Request().Context(), MirrorTimeout)
		defer cancel()

		records, err := s.mirror.Recent(ctx, session, limit)
		if err == nil {
			return c.JSON(http.StatusOK, records)
		}
		s.logger.Warn().Err(err).Str("session", session).Msg("Memory mirror read failed, serving local memory")
	}
	return c.JSON(http.StatusOK, s.bot.Memory().Recent(limit))
}
