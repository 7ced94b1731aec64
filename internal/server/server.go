// Package server exposes the bot dashboard and its control endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"minebot/src/activity"
	"minebot/src/model"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

const (
	// RecentLogs is how many log entries the dashboard shows
	RecentLogs = 20
	// StopTimeout bounds how long /stop waits for the loop to exit
	StopTimeout = 5 * time.Second
	// MirrorTimeout bounds each call to the memory mirror
	MirrorTimeout = 2 * time.Second
)

// Bot is the control surface driven by the HTTP handlers.
type Bot interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	SetGoal(goal string)
	Status() model.Status
	Health() model.Health
	Log() *activity.Log
	Memory() *activity.Memory
}

// Mirror is the optional external copy of the memory buffer.
type Mirror interface {
	Ping(ctx context.Context) error
	Recent(ctx context.Context, sessionID string, n int) ([]model.MemoryRecord, error)
}

// Options configures the HTTP server.
type Options struct {
	Addr           string
	BotName        string
	Server         string
	RateLimitRPS   float64
	RateLimitBurst int
	Mirror         Mirror // may be nil
	Logger         zerolog.Logger
}

// Server serves the dashboard.
type Server struct {
	echo    *echo.Echo
	bot     Bot
	mirror  Mirror
	addr    string
	botName string
	server  string
	logger  zerolog.Logger

	// runCtx scopes loops started over HTTP to the process instead of the request
	runCtx context.Context
}

// New creates the server and registers its routes. runCtx bounds every loop
// started through /start.
func New(runCtx context.Context, bot Bot, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	s := &Server{
		echo:    e,
		bot:     bot,
		mirror:  opts.Mirror,
		addr:    opts.Addr,
		botName: opts.BotName,
		server:  opts.Server,
		logger:  opts.Logger,
		runCtx:  runCtx,
	}

	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	e.GET("/", s.handleDashboard)
	e.GET("/status", s.handleStatus)
	e.GET("/get_logs", s.handleGetLogs)
	e.GET("/health", s.handleHealth)

	api := e.Group("/api")
	api.GET("/status", s.handleAPIStatus)
	api.GET("/memory", s.handleAPIMemory)

	limiter := NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	control := e.Group("", limiter.Middleware())
	control.GET("/start", s.handleStart)
	control.GET("/stop", s.handleStop)
	control.POST("/goal", s.handleGoal)
	control.GET("/clear_logs", s.handleClearLogs)

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.addr).Msg("Dashboard listening")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx is done
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := s.logger.Debug()
			if v.Error != nil {
				event = s.logger.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Str("remote_ip", v.RemoteIP).
				Dur("latency", v.Latency).
				Msg("HTTP request")
			return nil
		},
	})
}

// sonicSerializer plugs sonic into echo's JSON handling.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := sonic.ConfigDefault.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := sonic.ConfigDefault.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
