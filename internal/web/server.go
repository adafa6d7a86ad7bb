// Package web serves the fraud-detection dashboard and its JSON API.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/claimguard/internal/config"
	"github.com/Veraticus/claimguard/internal/metrics"
	"github.com/Veraticus/claimguard/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the collaborators the server needs.
type Deps struct {
	Sessions  service.SessionStore
	Auth      service.Authenticator
	Predictor service.Predictor
	Retrainer service.Retrainer
	Metrics   *metrics.Metrics // optional
	Logger    *slog.Logger
}

// Server is the dashboard web server.
type Server struct {
	deps   Deps
	router *gin.Engine
	logger *slog.Logger
	cfg    config.Config
}

// NewServer builds the router. Callers choose the gin mode beforehand.
func NewServer(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Sessions == nil || deps.Auth == nil || deps.Predictor == nil {
		return nil, fmt.Errorf("web server: sessions, auth and predictor are required")
	}
	if deps.Retrainer == nil {
		deps.Retrainer = StubRetrainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: router,
		logger: logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	if dir := s.cfg.Server.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			r.Static("/static", dir)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Static directory unavailable", "dir", dir, "error", err)
		}
	}

	r.GET("/healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	// Public pages
	r.GET("/", s.handleLoginPage)
	r.POST("/", s.handleLogin)
	r.GET("/login", s.handleLoginPage)
	r.POST("/login", s.handleLogin)
	r.GET("/logout", s.handleLogout)
	r.GET("/settings", s.handleSettings)

	pages := r.Group("/", s.RequirePage())
	{
		pages.GET("/dashboard", s.page("dashboard.html", "dashboard"))
		pages.GET("/profile", s.page("profile.html", "profile"))
		pages.GET("/data", s.handleData)
		pages.GET("/exploratory-analysis", s.page("exploratory_analysis.html", "exploratory_analysis"))
		pages.GET("/data-drift", s.page("data_drift.html", "data_drift"))
		pages.GET("/model-training", s.page("model_training.html", "model_training"))
		pages.GET("/model-inference", s.page("model_inference.html", "model_inference"))
		pages.GET("/feature-importance", s.page("feature_importance.html", "feature_importance"))
	}

	api := r.Group("/api", s.RequireAPI())
	{
		api.POST("/predict", s.handlePredict)
		api.POST("/trigger-retraining", s.handleTriggerRetraining)
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
