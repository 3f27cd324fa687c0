package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoicing-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// envelope is the flat success response shape: {"success": true, ...payload}.
type envelope map[string]interface{}

// errorEnvelope is the flat error response shape: {"success": false, "error": "..."}.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// OK sends a 200 response with payload flattened alongside "success": true.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, merge(payload))
}

// Created sends a 201 response with payload flattened alongside "success": true.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, merge(payload))
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps its HTTP status accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, errorEnvelope{Success: false, Error: appErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, errorEnvelope{Success: false, Error: "Internal server error"})
}

// merge flattens payload's JSON fields into a map alongside "success": true.
// payload may be nil, a struct, or a map; anything that isn't a JSON object
// (e.g. a slice) is nested under "data" instead, since it can't be flattened.
func merge(payload interface{}) envelope {
	env := envelope{"success": true}
	if payload == nil {
		return env
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return env
	}

	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for k, v := range asMap {
			env[k] = v
		}
		return env
	}

	env["data"] = payload
	return env
}
