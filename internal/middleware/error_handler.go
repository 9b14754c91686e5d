package middleware

import (
	"treasury-backend/internal/pkg/apperr"
	"treasury-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Typed ledger failures map to
// their HTTP status; everything else is a 500 with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if code := apperr.CodeOf(err); code != "" {
		return response.Error(c, err.Error(), apperr.HTTPStatus(err), map[string]interface{}{
			"code": string(code),
		})
	}

	status := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		status = e.Code
		message = e.Message
	}
	return response.Error(c, message, status, nil)
}
