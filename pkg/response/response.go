// Package response provides the JSON envelope used by every NewFlow API
// endpoint: {"success": bool, "data": ...}.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the standard response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// OK writes a 200 envelope.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 envelope.
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}
