package response

import (
	"errors"

	"delius-api/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error:   message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// FromError maps a domain error to its HTTP response. Unrecognised errors are
// reported as 500 without leaking their message.
func FromError(c *fiber.Ctx, err error) error {
	var badRequest *domain.BadRequestError
	if errors.As(err, &badRequest) {
		return BadRequest(c, badRequest.Message)
	}
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return NotFound(c, notFound.Message)
	}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return Conflict(c, conflict.Message)
	}
	var unauthorized *domain.UnauthorizedError
	if errors.As(err, &unauthorized) {
		return Unauthorized(c, unauthorized.Message)
	}
	var forbidden *domain.ForbiddenError
	if errors.As(err, &forbidden) {
		return Forbidden(c, forbidden.Message)
	}
	return InternalServerError(c, "internal server error")
}
