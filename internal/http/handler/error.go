package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shotapi/internal/http/middleware"
	"shotapi/internal/logging"
	"shotapi/internal/metadata"
	"shotapi/internal/service"
)

// User-visible error messages.
const (
	MsgMissingCredentials = "Username and password are required"
	MsgInvalidCredentials = "Invalid username or password"
	MsgNotFound           = "Resource not found"
	MsgInternal           = "Internal server error"
	MsgInvalidMetadata    = "Invalid metadata"
	MsgMetadataTooLarge   = "Metadata size exceeds maximum allowed"
	MsgKeyRequired        = "Screenshot key is required"
	MsgConflict           = "Screenshot was modified concurrently"
	MsgInvalidJSON        = "Invalid JSON in request body"
	MsgBodyRequired       = "Request body is required"
	MsgMetadataNotObject  = "Metadata must be a valid object"
	MsgInvalidQuery       = "Invalid query parameter"
	MsgUnavailable        = "Dependency unavailable"
)

// sizeDetails is the details payload of a size rejection.
type sizeDetails struct {
	Size  int `json:"size"`
	Limit int `json:"limit"`
}

// fromError maps a service error onto a failure Result without leaking
// internal error text. Unexpected errors are logged with the request id.
func fromError(c *fiber.Ctx, log *zap.Logger, err error) Result {
	var verr *metadata.ValidationError
	var serr *metadata.SizeError

	switch {
	case errors.As(err, &verr):
		return Fail(fiber.StatusBadRequest, MsgInvalidMetadata, verr.Errors)
	case errors.As(err, &serr):
		return Fail(fiber.StatusBadRequest, MsgMetadataTooLarge, sizeDetails{Size: serr.Size, Limit: serr.Limit})
	case errors.Is(err, service.ErrMissingCredentials):
		return Fail(fiber.StatusBadRequest, MsgMissingCredentials, nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return Fail(fiber.StatusUnauthorized, MsgInvalidCredentials, nil)
	case errors.Is(err, service.ErrKeyRequired):
		return Fail(fiber.StatusBadRequest, MsgKeyRequired, nil)
	case errors.Is(err, service.ErrInvalidSort):
		return Fail(fiber.StatusBadRequest, MsgInvalidQuery, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return Fail(fiber.StatusNotFound, MsgNotFound, nil)
	case errors.Is(err, service.ErrConflict):
		return Fail(fiber.StatusConflict, MsgConflict, nil)
	default:
		log.Error("request failed",
			zap.String("request_id", middleware.RequestIDFrom(c)),
			zap.String("path", c.Path()),
			logging.Trace(c.UserContext()),
			zap.Error(err),
		)
		return Fail(fiber.StatusInternalServerError, MsgInternal, nil)
	}
}

// unauthorized renders a 401 in the envelope; used by the auth middleware.
func unauthorized(c *fiber.Ctx, message string) error {
	return write(c, Fail(fiber.StatusUnauthorized, message, nil))
}

// ErrorHandler returns a Fiber global error handler that renders errors in
// the same envelope as handler failures.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return write(c, Fail(status, "Bad request", nil))
		case fiber.StatusNotFound:
			return write(c, Fail(status, MsgNotFound, nil))
		case fiber.StatusMethodNotAllowed:
			return write(c, Fail(status, "Method not allowed", nil))
		case fiber.StatusRequestEntityTooLarge:
			return write(c, Fail(status, "Request body too large", nil))
		default:
			log.Error("unhandled error",
				zap.String("request_id", middleware.RequestIDFrom(c)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return write(c, Fail(fiber.StatusInternalServerError, MsgInternal, nil))
		}
	}
}
