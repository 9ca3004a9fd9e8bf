package handler

import (
	"github.com/gofiber/fiber/v2"

	"shotapi/internal/http/middleware"
)

// Kind tags a Result as a success or a failure.
type Kind int

const (
	KindSuccess Kind = iota
	KindFailure
)

// Result is what every API handler returns. Exactly one of the two variants
// is meaningful, chosen by Kind: a success carries Message and Data, a
// failure carries Error and optional Details.
type Result struct {
	Kind    Kind
	Status  int
	Message string
	Data    any
	Error   string
	Details any
}

// OK builds a 200 success.
func OK(message string, data any) Result {
	return Result{Kind: KindSuccess, Status: fiber.StatusOK, Message: message, Data: data}
}

// Fail builds a failure. details may be nil.
func Fail(status int, message string, details any) Result {
	return Result{Kind: KindFailure, Status: status, Error: message, Details: details}
}

// successEnvelope is the wire shape of a success.
type successEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// failureEnvelope is the wire shape of a failure.
type failureEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Func is an API handler.
type Func func(c *fiber.Ctx) Result

// Adapt turns a Func into a fiber.Handler that writes the envelope.
func Adapt(fn Func) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return write(c, fn(c))
	}
}

func write(c *fiber.Ctx, r Result) error {
	switch r.Kind {
	case KindSuccess:
		return c.Status(r.Status).JSON(successEnvelope{
			Success: true,
			Message: r.Message,
			Data:    r.Data,
		})
	default:
		return c.Status(r.Status).JSON(failureEnvelope{
			Success:   false,
			Error:     r.Error,
			Details:   r.Details,
			RequestID: middleware.RequestIDFrom(c),
		})
	}
}
