package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"focus-tracker/internal/api"
	"focus-tracker/internal/dates"
	"focus-tracker/internal/service"
	"focus-tracker/internal/storage"
)

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, api.Envelope[any]{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func fail(c *gin.Context, status int, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, api.Envelope[any]{
		Error:  message,
		Errors: fields,
	})
}

// failErr classifies err and writes the matching envelope. Anything not
// classified by the service layer is logged and reported as a 500.
func (h *Handler) failErr(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		fail(c, http.StatusBadRequest, "Validation failed", verr.Fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		fail(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrConflict):
		fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, storage.ErrDisabled):
		fail(c, http.StatusServiceUnavailable, "Export storage is not configured", nil)
	default:
		h.log(c).WithError(err).Error("request failed")
		fail(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// bind decodes the JSON body into dst. An empty body decodes as {} so the
// service layer reports the missing fields.
func (h *Handler) bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fail(c, http.StatusBadRequest, "Validation failed", map[string]string{
			typeErr.Field: typeMessage(typeErr),
		})
		return false
	}
	fail(c, http.StatusBadRequest, "Invalid request body", nil)
	return false
}

func typeMessage(err *json.UnmarshalTypeError) string {
	t := err.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%s must be a whole number", err.Field)
	case reflect.String:
		return fmt.Sprintf("%s must be a string", err.Field)
	case reflect.Bool:
		return fmt.Sprintf("%s must be true or false", err.Field)
	default:
		return fmt.Sprintf("%s is invalid", err.Field)
	}
}

// parseDate turns free-form user input into a time, recording a field error
// on failure. Blank input yields nil.
func (h *Handler) parseDate(raw, field string, loc *time.Location, fields map[string]string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dates.Parse(raw, h.now(), loc)
	if err != nil {
		fields[field] = "Invalid date"
		return nil
	}
	return &t
}
