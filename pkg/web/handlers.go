package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/dukex/stateflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

var errInvalidJSON = errors.New("invalid JSON format")

type APIHandlers struct {
	workflowService *services.Workflow
	validator       *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		validator:       validator,
	}
}

// Register mounts every canvas route on router.
func (h *APIHandlers) Register(router fiber.Router) {
	router.Post("/compile", h.Compile)
	router.Post("/decompile", h.Decompile)

	w := router.Group("/workflows")
	w.Post("/", h.SubmitWorkflow)
	w.Get("/:id", h.OpenWorkflow)

	d := router.Group("/drafts")
	d.Get("/", h.GetDrafts)
	d.Post("/", h.CreateDraft)
	d.Get("/:id", h.GetDraft)
	d.Put("/:id", h.UpdateDraft)
	d.Delete("/:id", h.DeleteDraft)

	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) Compile(c fiber.Ctx) error {
	var req CompileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result := h.workflowService.Compile(c.Context(), req.Graph, req.Name, req.CreatedBy)

	return c.JSON(result)
}

func (h *APIHandlers) Decompile(c fiber.Ctx) error {
	var req DecompileRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	doc := req.Document
	if req.StartAt != "" {
		doc.StartAt = req.StartAt
	}

	result := h.workflowService.Decompile(c.Context(), doc)

	return c.JSON(result)
}

func (h *APIHandlers) OpenWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	opened, err := h.workflowService.Open(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(opened)
}

func (h *APIHandlers) SubmitWorkflow(c fiber.Ctx) error {
	var req SubmitRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	submitted, err := h.workflowService.Submit(c.Context(), req.Graph, req.Name, req.CreatedBy)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(submitted)
}

func (h *APIHandlers) GetDrafts(c fiber.Ctx) error {
	drafts, err := h.workflowService.Drafts(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	summaries := make([]DraftSummary, 0, len(drafts))
	for _, draft := range drafts {
		summaries = append(summaries, NewDraftSummary(draft))
	}

	return c.JSON(summaries)
}

func (h *APIHandlers) CreateDraft(c fiber.Ctx) error {
	req, err := h.bindDraft(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	draft, err := h.workflowService.SaveDraft(c.Context(), req.Graph, req.Name, req.CreatedBy)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(draft)
}

func (h *APIHandlers) GetDraft(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Draft ID is required")
	}

	view, err := h.workflowService.Draft(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(view)
}

func (h *APIHandlers) UpdateDraft(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Draft ID is required")
	}

	req, err := h.bindDraft(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	draft, err := h.workflowService.UpdateDraft(c.Context(), id, req.Graph, req.Name, req.CreatedBy)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(draft)
}

func (h *APIHandlers) DeleteDraft(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Draft ID is required")
	}

	err := h.workflowService.DeleteDraft(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	persistenceCheck, ok := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Stateflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Stateflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"persistence": persistenceCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) bindDraft(c fiber.Ctx) (*DraftRequest, error) {
	var req DraftRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, errInvalidJSON
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	return &req, nil
}
