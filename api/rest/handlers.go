package rest

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/budu/mu-action/internal/catalog"
	"github.com/budu/mu-action/pkg/action"
)

// healthCheck handles GET /health
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// listActions handles GET /api/v1/actions
func (s *Server) listActions(c *fiber.Ctx) error {
	actions := s.invoker.Catalog().List()
	out := make([]ActionSummary, 0, len(actions))
	for _, a := range actions {
		out = append(out, summarize(a))
	}
	return c.JSON(fiber.Map{
		"actions": out,
		"count":   len(out),
	})
}

// getAction handles GET /api/v1/actions/:name
func (s *Server) getAction(c *fiber.Ctx) error {
	name := c.Params("name")
	a, err := s.invoker.Catalog().Get(name)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	}
	return c.JSON(summarize(a))
}

// runAction handles POST /api/v1/actions/:name/run. The request body is a
// JSON object of argument values; an empty body runs the action without
// arguments.
func (s *Server) runAction(c *fiber.Ctx) error {
	name := c.Params("name")

	args := map[string]any{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&args); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_request",
				Message: "request body must be a JSON object: " + err.Error(),
			})
		}
	}

	inv, err := s.invoker.Invoke(name, args)
	if err != nil {
		var notFound *catalog.NotFoundError
		switch {
		case errors.As(err, &notFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error:   "not_found",
				Message: err.Error(),
			})
		case action.IsValidationError(err):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
				Error:   "validation_failed",
				Message: err.Error(),
			})
		default:
			// Programming defect inside the action, not a domain failure.
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
				Error:   "action_error",
				Message: err.Error(),
			})
		}
	}

	resp := RunResponse{
		InvocationID: inv.ID,
		Action:       inv.Action,
		OK:           inv.Outcome.OK,
		Meta:         wireMeta(inv.Outcome.Meta),
		DurationMs:   float64(inv.Duration) / float64(time.Millisecond),
	}
	if inv.Outcome.OK {
		resp.Value = inv.Outcome.Value
	} else {
		resp.Error = inv.Outcome.Err.Error()
	}
	return c.JSON(resp)
}

// getStats handles GET /api/v1/stats
func (s *Server) getStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"stats": s.invoker.Recorder().All(),
	})
}
