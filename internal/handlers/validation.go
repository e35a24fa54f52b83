package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/riverwatchhq/riverwatch/pkg/errors"
	"github.com/riverwatchhq/riverwatch/pkg/response"
	"github.com/riverwatchhq/riverwatch/pkg/validator"
)

// bindAndValidate decodes the JSON body into dest and applies its validation
// tags. On failure a 400 envelope is written and false returned, so handlers
// can bail out with a bare return.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, errors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := validator.ValidateStruct(dest); err != nil {
		response.Error(c, errors.NewBadRequest(validationMessage(err)))
		return false
	}

	return true
}

// validationMessage flattens validator failures into one client-facing
// sentence per field.
func validationMessage(err error) string {
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return "invalid request payload"
	}

	parts := make([]string, 0, len(ve))
	for _, failure := range ve {
		parts = append(parts, describeFailure(failure))
	}
	return strings.Join(parts, "; ")
}

func describeFailure(f validator.ValidationError) string {
	field := humanField(f.Field)

	switch f.Tag {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, f.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, f.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, f.Param)
	}

	if f.Param != "" {
		return fmt.Sprintf("%s failed validation: %s=%s", field, f.Tag, f.Param)
	}
	return fmt.Sprintf("%s failed validation: %s", field, f.Tag)
}

func humanField(name string) string {
	if name == "" {
		return "field"
	}
	return strings.ToLower(strings.ReplaceAll(name, "_", " "))
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
