package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the standard JSON envelope for every endpoint
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
}

// ErrorData carries a machine-readable code alongside the human message
type ErrorData struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError reports a validation failure for a single input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Success writes a 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created writes a 201 with data
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Validation writes a 400 with per-field errors
func Validation(c *gin.Context, fields []FieldError) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error: &ErrorData{
			Code:    "validation-failed",
			Message: "The request failed validation",
			Fields:  fields,
		},
	})
}

// BadRequest writes a 400 with a single message
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   &ErrorData{Code: "bad-request", Message: message},
	})
}

// NotFound writes a 404 with a machine-readable code
func NotFound(c *gin.Context, code, message string) {
	c.JSON(http.StatusNotFound, Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	})
}

// Conflict writes a 422 business-rule conflict
func Conflict(c *gin.Context, code, message string) {
	c.JSON(http.StatusUnprocessableEntity, Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	})
}

// Unauthorized writes a 401
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{
		Success: false,
		Error:   &ErrorData{Code: "unauthorized", Message: message},
	})
}

// Forbidden writes a 403
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Response{
		Success: false,
		Error:   &ErrorData{Code: "forbidden", Message: message},
	})
}

// DependencyFailure writes a 500 for a collaborator error, keeping the
// underlying message visible to the caller
func DependencyFailure(c *gin.Context, code, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	})
}

// InternalError writes an opaque 500
func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Error:   &ErrorData{Code: "internal-error", Message: message},
	})
}
