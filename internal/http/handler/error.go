package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"readable/internal/extract"
	"readable/internal/http/middleware"
	"readable/internal/service"
	"readable/internal/upstream"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		Code:      code,
		RequestID: middleware.RequestIDFromCtx(c),
	})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{extract.ErrUnsupportedFormat, fiber.StatusBadRequest, "INVALID_FILE_TYPE", "Invalid file type"},
	{extract.ErrDecode, fiber.StatusBadRequest, "DECODE_ERROR", "Could not read text from file"},
	{service.ErrUploadTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File too large"},
	{service.ErrTextRequired, fiber.StatusBadRequest, "TEXT_REQUIRED", "No text provided"},
	{service.ErrTextEmpty, fiber.StatusBadRequest, "TEXT_EMPTY", "Empty text provided"},
	{service.ErrTextTooLarge, fiber.StatusRequestEntityTooLarge, "TEXT_TOO_LARGE", "Text too large"},
	{service.ErrSimplifierDisabled, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Simplification is not configured"},
	{service.ErrSpeechDisabled, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Speech synthesis is not configured"},
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", "invalid id format"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "upload not found"},
}

// writeServiceError translates an error returned by a service into a response.
// Upstream and unexpected errors are logged in full; the client sees a safe message.
func writeServiceError(c *fiber.Ctx, log *slog.Logger, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return writeError(c, m.status, m.code, m.message)
		}
	}

	if ue, ok := upstream.As(err); ok {
		log.ErrorContext(c.UserContext(), "upstream_failed",
			"request_id", middleware.RequestIDFromCtx(c),
			"service", ue.Service,
			"error_message", err.Error(),
		)
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", upstream.ClientMessage(err))
	}

	log.ErrorContext(c.UserContext(), "request_failed",
		"request_id", middleware.RequestIDFromCtx(c),
		"path", c.Path(),
		"error_message", err.Error(),
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if !errors.As(err, &fe) {
			return writeServiceError(c, log, err)
		}

		switch fe.Code {
		case fiber.StatusBadRequest:
			return writeError(c, fe.Code, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, fe.Code, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, fe.Code, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fe.Code, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusTooManyRequests:
			return writeError(c, fe.Code, "TOO_MANY_REQUESTS", "too many requests")
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
