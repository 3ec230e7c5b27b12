package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, InsufficientDataError("too few rows").HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, InvalidConfigurationError("bad request").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, UnknownLevelError("bogus").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFoundError("missing").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, InternalError("boom", nil).HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, ExternalError("store down", nil).HTTPStatus())
}

func TestErrorString(t *testing.T) {
	err := InsufficientDataError("minimum 10 data points required")
	assert.Equal(t, "insufficient_data: minimum 10 data points required", err.Error())

	wrapped := InternalError("analysis failed", errors.New("connection reset"))
	assert.Equal(t, "internal: analysis failed: connection reset", wrapped.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("pg write failed")
	warn := AuditPersistenceWarning("could not store audit trail", cause)
	assert.ErrorIs(t, warn, cause)
}

func TestWithField(t *testing.T) {
	err := InvalidConfigurationError("need at least two subjects").
		WithField("analysis_type", "cross_app").
		WithField("subjects", 1)

	assert.Equal(t, "cross_app", err.Context["analysis_type"])
	assert.Equal(t, 1, err.Context["subjects"])
}

func TestToResponse(t *testing.T) {
	err := InsufficientDataError("too few rows").WithField("rows", 4)
	resp := err.ToResponse()
	assert.Equal(t, "too few rows", resp.Error)
	assert.Equal(t, TypeInsufficientData, resp.Type)
	assert.Equal(t, 4, resp.Context["rows"])
}

func TestAsStructuredError(t *testing.T) {
	structured := InvalidConfigurationError("bad")
	assert.Same(t, structured, AsStructuredError(structured))

	wrapped := fmt.Errorf("handler: %w", structured)
	assert.Same(t, structured, AsStructuredError(wrapped))

	plain := errors.New("plain")
	converted := AsStructuredError(plain)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.ErrorIs(t, converted, plain)

	assert.Nil(t, AsStructuredError(nil))
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", InsufficientDataError("nope"))
	assert.True(t, IsType(err, TypeInsufficientData))
	assert.False(t, IsType(err, TypeInvalidConfiguration))
	assert.False(t, IsType(errors.New("plain"), TypeInsufficientData))
}
