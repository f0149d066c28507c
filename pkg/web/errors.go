package web

import (
	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// DiagnosticsProblem is a problem document carrying the diagnostics that
// refused a submission.
type DiagnosticsProblem struct {
	*problems.Problem

	Diagnostics models.Diagnostics `json:"diagnostics"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsBlockingError(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("blocking_diagnostics").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(DiagnosticsProblem{
			Problem:     problem,
			Diagnostics: services.DiagnosticsOf(err),
		})

	case services.IsNotFoundError(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsUpstreamError(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("upstream_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
