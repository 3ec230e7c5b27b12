package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jahboukie/sentiment-as-a-service/internal/anonymize"
	apperrors "github.com/jahboukie/sentiment-as-a-service/internal/errors"
)

type anonymizeRequest struct {
	Text  string `json:"text"`
	Level string `json:"anonymizationLevel"`
}

type anonymizeResponse struct {
	JobID           string                     `json:"jobId"`
	AnonymizedText  string                     `json:"anonymizedText"`
	Transformations []anonymize.Transformation `json:"transformations"`
	Validation      anonymize.Validation       `json:"validation"`
	Warnings        []string                   `json:"warnings,omitempty"`
}

func (s *Server) handleAnonymize(c echo.Context) error {
	var req anonymizeRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.InvalidConfigurationError("malformed anonymization request: " + err.Error())
	}
	if req.Text == "" {
		return apperrors.InvalidConfigurationError("text is required")
	}

	level, err := anonymize.ParseLevel(req.Level)
	if err != nil {
		// Unknown levels from the outside are a caller mistake, not a
		// pipeline defect.
		return apperrors.InvalidConfigurationError("unknown anonymization level: " + req.Level).
			WithField("valid_levels", anonymize.Levels())
	}

	result, err := s.anonymizer.AnonymizeText(c.Request().Context(), req.Text, level)
	if err != nil {
		return err
	}

	resp := anonymizeResponse{
		JobID:           result.JobID.String(),
		AnonymizedText:  result.Text,
		Transformations: result.Transformations,
		Validation:      anonymize.ValidateAnonymization(req.Text, result.Text),
	}
	if result.Warning != nil {
		resp.Warnings = append(resp.Warnings, result.Warning.Message)
	}

	if err := c.JSON(200, resp); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type datasetRequest struct {
	Level   string           `json:"anonymizationLevel"`
	Filters anonymize.Filter `json:"filters"`
	Offset  int              `json:"offset"`
}

func (s *Server) handleCreateDataset(c echo.Context) error {
	var req datasetRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.InvalidConfigurationError("malformed dataset request: " + err.Error())
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		return apperrors.InvalidConfigurationError("format must be json or csv").
			WithField("format", format)
	}

	level, err := anonymize.ParseLevel(req.Level)
	if err != nil {
		return apperrors.InvalidConfigurationError("unknown anonymization level: " + req.Level).
			WithField("valid_levels", anonymize.Levels())
	}
	if req.Offset < 0 {
		return apperrors.InvalidConfigurationError("offset must not be negative").
			WithField("offset", req.Offset)
	}

	ctx := c.Request().Context()
	var dataset *anonymize.Dataset
	if req.Offset > 0 {
		dataset, err = s.exporter.ResumeDataset(ctx, req.Filters, level, req.Offset)
	} else {
		dataset, err = s.exporter.CreateDataset(ctx, req.Filters, level)
	}
	if err != nil {
		return err
	}

	if format == "csv" {
		res := c.Response()
		res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		res.Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="dataset-%s.csv"`, dataset.ID))
		res.WriteHeader(http.StatusOK)
		if err := anonymize.WriteCSV(res, dataset.Records); err != nil {
			return fmt.Errorf("failed to render CSV dataset: %w", err)
		}
		return nil
	}

	if err := c.JSON(200, dataset); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
