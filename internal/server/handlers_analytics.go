package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/jahboukie/sentiment-as-a-service/internal/correlation"
	apperrors "github.com/jahboukie/sentiment-as-a-service/internal/errors"
)

func (s *Server) handleCorrelations(c echo.Context) error {
	var cfg correlation.Config
	if err := c.Bind(&cfg); err != nil {
		return apperrors.InvalidConfigurationError("malformed correlation request: " + err.Error())
	}

	ctx := c.Request().Context()
	compute := func(ctx context.Context) (*correlation.Analysis, error) {
		return s.correlations.Analyze(ctx, cfg)
	}

	var analysis *correlation.Analysis
	var err error
	if s.cache != nil {
		analysis, err = s.cache.GetOrCompute(ctx, cfg, compute)
	} else {
		analysis, err = compute(ctx)
	}
	if err != nil {
		return err
	}

	if err := c.JSON(200, analysis); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
