package handler

import (
	"time"

	"github.com/labstack/echo/v4"
)

// Response is the envelope every endpoint renders, errors included.
type Response struct {
	Code      int       `json:"code"`
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Respond writes data wrapped in the standard envelope.
func Respond(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, Response{
		Code:      code,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
