// Package server exposes the assistant over HTTP: a chat endpoint that
// understands the bot commands, a knowledge-base status endpoint, health
// and Prometheus metrics.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"iitubot/config"
	"iitubot/models"
)

// Responder is the conversational surface the server needs from the bot.
type Responder interface {
	HandleStart(ctx context.Context, userID string) (string, error)
	HandleHelp() string
	HandleMessage(ctx context.Context, userID, text string) (string, error)
	HandleReturn(ctx context.Context, userID string) (string, error)
}

// KnowledgeInfo reports the state of the knowledge collection.
type KnowledgeInfo interface {
	Info() (models.StoreInfo, error)
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Server is the HTTP transport around the bot.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *log.Logger
}

// New builds the server with routes and middleware registered.
func New(cfg config.ServerConfig, responder Responder, info KnowledgeInfo, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/chat", chatHandler(responder))
	api.GET("/knowledge", knowledgeHandler(info))

	return &Server{echo: e, addr: cfg.Address, logger: logger}
}

// chatHandler dispatches bot commands and free-text questions. Commands
// mirror the messenger surface: /start, /help and /return.
func chatHandler(responder Responder) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req chatRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if strings.TrimSpace(req.UserID) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
		}

		ctx := c.Request().Context()
		message := strings.TrimSpace(req.Message)

		var reply string
		var err error
		switch command(message) {
		case "/start":
			reply, err = responder.HandleStart(ctx, req.UserID)
		case "/help":
			reply = responder.HandleHelp()
		case "/return":
			reply, err = responder.HandleReturn(ctx, req.UserID)
		default:
			reply, err = responder.HandleMessage(ctx, req.UserID, message)
		}
		if err != nil {
			return fmt.Errorf("handling message: %w", err)
		}
		return c.JSON(http.StatusOK, chatResponse{Reply: reply})
	}
}

func knowledgeHandler(info KnowledgeInfo) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := info.Info()
		if err != nil {
			return fmt.Errorf("reading knowledge info: %w", err)
		}
		return c.JSON(http.StatusOK, stats)
	}
}

// command extracts a leading slash command, tolerating trailing arguments.
func command(message string) string {
	if !strings.HasPrefix(message, "/") {
		return ""
	}
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Printf("listening on %s", s.addr)
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
