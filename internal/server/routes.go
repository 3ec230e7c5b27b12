package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Analytics
	s.echo.POST("/api/analytics/correlations", s.handleCorrelations)

	// Research
	s.echo.POST("/api/research/anonymize", s.handleAnonymize)
	s.echo.POST("/api/research/datasets", s.handleCreateDataset)
}
