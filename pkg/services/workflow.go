package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/stateflow/pkg/compiler"
	"github.com/dukex/stateflow/pkg/decompiler"
	"github.com/dukex/stateflow/pkg/eventbus"
	"github.com/dukex/stateflow/pkg/events"
	"github.com/dukex/stateflow/pkg/executor"
	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/otelhelper"
	"github.com/dukex/stateflow/pkg/persistence"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Executor is the part of the workflow-execution service the editor depends on.
type Executor interface {
	Fetch(ctx context.Context, id string) (*executor.Workflow, error)
	FetchMap(ctx context.Context, id string) (*models.WorkflowMap, error)
	Submit(ctx context.Context, doc models.WorkflowDocument) (*executor.Workflow, error)
}

// Workflow implements the editor operations: compile, open, submit and drafts.
type Workflow struct {
	persistence persistence.Persistence
	executor    Executor
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	logger      *slog.Logger
	strict      bool
}

// Option configures a Workflow service.
type Option func(*Workflow)

// WithTracer sets the tracer used for operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(w *Workflow) {
		w.tracer = tracer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithStrictSubmit refuses submission on any diagnostic, not only blocking ones.
func WithStrictSubmit(strict bool) Option {
	return func(w *Workflow) {
		w.strict = strict
	}
}

// NewWorkflow creates a new workflow service. eventBus may be nil.
func NewWorkflow(p persistence.Persistence, exec Executor, eventBus eventbus.EventBus, opts ...Option) *Workflow {
	w := &Workflow{
		persistence: p,
		executor:    exec,
		eventBus:    eventBus,
		tracer:      otelhelper.NoopTracer(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.logger = w.logger.With("module", "workflow_service")

	return w
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Compile translates graph into a document named name.
func (w *Workflow) Compile(ctx context.Context, graph models.Graph, name, createdBy string) compiler.Result {
	_, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.compile",
		attribute.String(otelhelper.WorkflowNameKey, name),
	)
	defer span.End()

	result := compiler.Compile(graph.Nodes, graph.Edges, name, compiler.WithCreatedBy(createdBy))

	span.SetAttributes(attribute.Int(otelhelper.WorkflowStepsKey, len(result.Document.Steps)))
	otelhelper.SetDiagnostics(span, result.Diagnostics)

	return result
}

// Decompile rebuilds an editable graph from doc.
func (w *Workflow) Decompile(ctx context.Context, doc models.WorkflowDocument) decompiler.Result {
	_, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.decompile",
		attribute.String(otelhelper.WorkflowNameKey, doc.Name),
		attribute.Int(otelhelper.WorkflowStepsKey, len(doc.Steps)),
	)
	defer span.End()

	result := decompiler.DecompileDocument(doc)
	otelhelper.SetDiagnostics(span, result.Diagnostics)

	return result
}

// OpenResult is a remote workflow ready for editing.
type OpenResult struct {
	WorkflowID  string                  `json:"workflow_id"`
	Document    models.WorkflowDocument `json:"document"`
	Graph       models.Graph            `json:"graph"`
	Diagnostics models.Diagnostics      `json:"diagnostics"`
}

// Open fetches a remote workflow and its map and decompiles them into a graph.
// When the workflow resource carries no steps they are rebuilt from the map descriptors.
func (w *Workflow) Open(ctx context.Context, id string) (*OpenResult, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.open",
		attribute.String(otelhelper.WorkflowIDKey, id),
	)
	defer span.End()

	remote, err := w.executor.Fetch(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to fetch workflow %s: %w", id, err)
	}

	workflowMap, err := w.executor.FetchMap(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to fetch map of workflow %s: %w", id, err)
	}

	var diagnostics models.Diagnostics

	doc := remote.WorkflowDocument
	doc.StartAt = workflowMap.StartAt

	if len(doc.Steps) == 0 && len(workflowMap.Steps) > 0 {
		steps, mapDiagnostics := decompiler.StepsFromMap(*workflowMap)
		doc.Steps = steps
		diagnostics = append(diagnostics, mapDiagnostics...)
	}

	result := w.Decompile(ctx, doc)
	diagnostics = append(diagnostics, result.Diagnostics...)

	otelhelper.SetDiagnostics(span, diagnostics)

	return &OpenResult{
		WorkflowID:  id,
		Document:    doc,
		Graph:       result.Graph,
		Diagnostics: diagnostics,
	}, nil
}

// SubmitResult is the outcome of a submission attempt.
type SubmitResult struct {
	WorkflowID  string                  `json:"workflow_id,omitempty"`
	Document    models.WorkflowDocument `json:"document"`
	Diagnostics models.Diagnostics      `json:"diagnostics"`
}

// Submit compiles graph and sends the document to the execution service.
// A refused submission returns both the compile result and an error wrapping
// ErrBlockingDiagnostics.
func (w *Workflow) Submit(ctx context.Context, graph models.Graph, name, createdBy string) (*SubmitResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("Submit", "name_required", "workflow name is required", ErrWorkflowNameRequired)
	}

	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.submit",
		attribute.String(otelhelper.WorkflowNameKey, name),
	)
	defer span.End()

	compiled := w.Compile(ctx, graph, name, createdBy)

	result := &SubmitResult{
		Document:    compiled.Document,
		Diagnostics: compiled.Diagnostics,
	}

	if compiled.Diagnostics.Blocking() || (w.strict && len(compiled.Diagnostics) > 0) {
		err := &ServiceError{
			Op:          "Submit",
			Code:        "blocking_diagnostics",
			Message:     fmt.Sprintf("%d diagnostics prevent submission", len(compiled.Diagnostics)),
			Err:         ErrBlockingDiagnostics,
			Diagnostics: compiled.Diagnostics,
		}
		otelhelper.SetError(span, err)

		return result, err
	}

	remote, err := w.executor.Submit(ctx, compiled.Document)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to submit workflow %s: %w", name, err)
	}

	result.WorkflowID = remote.ID
	span.SetAttributes(attribute.String(otelhelper.WorkflowIDKey, remote.ID))

	w.logger.InfoContext(ctx, "Workflow submitted", "workflow_id", remote.ID, "name", name, "steps", len(compiled.Document.Steps))

	w.publish(ctx, remote.ID, events.WorkflowSubmitted{
		BaseEvent:  w.baseEvent(events.WorkflowSubmittedEvent),
		WorkflowID: remote.ID,
		Name:       name,
		StepCount:  len(compiled.Document.Steps),
		CreatedBy:  createdBy,
		Warnings:   len(compiled.Diagnostics),
	})

	return result, nil
}

// DraftView is a stored draft together with the graph rebuilt from it.
type DraftView struct {
	Draft       *models.Draft      `json:"draft"`
	Graph       models.Graph       `json:"graph"`
	Diagnostics models.Diagnostics `json:"diagnostics"`
}

// SaveDraft compiles graph and stores the result under a new id.
func (w *Workflow) SaveDraft(ctx context.Context, graph models.Graph, name, createdBy string) (*models.Draft, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft ID: %w", err)
	}

	draft := &models.Draft{ID: id.String()}

	return w.storeDraft(ctx, draft, graph, name, createdBy)
}

// UpdateDraft recompiles graph into the existing draft id.
func (w *Workflow) UpdateDraft(ctx context.Context, id string, graph models.Graph, name, createdBy string) (*models.Draft, error) {
	draft, err := w.persistence.DraftByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", id, err)
	}

	return w.storeDraft(ctx, draft, graph, name, createdBy)
}

func (w *Workflow) storeDraft(ctx context.Context, draft *models.Draft, graph models.Graph, name, createdBy string) (*models.Draft, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("SaveDraft", "name_required", "workflow name is required", ErrWorkflowNameRequired)
	}

	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.save_draft",
		attribute.String(otelhelper.DraftIDKey, draft.ID),
		attribute.String(otelhelper.WorkflowNameKey, name),
	)
	defer span.End()

	compiled := w.Compile(ctx, graph, name, createdBy)

	draft.Document = compiled.Document
	draft.Diagnostics = compiled.Diagnostics

	err := w.persistence.SaveDraft(ctx, draft)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save draft %s: %w", draft.ID, err)
	}

	w.publish(ctx, draft.ID, events.DraftSaved{
		BaseEvent:   w.baseEvent(events.DraftSavedEvent),
		DraftID:     draft.ID,
		Name:        name,
		Diagnostics: len(compiled.Diagnostics),
		Blocking:    compiled.Diagnostics.Blocking(),
	})

	return draft, nil
}

// Draft loads a draft and decompiles its document for the canvas.
func (w *Workflow) Draft(ctx context.Context, id string) (*DraftView, error) {
	draft, err := w.persistence.DraftByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", id, err)
	}

	result := w.Decompile(ctx, draft.Document)

	return &DraftView{
		Draft:       draft,
		Graph:       result.Graph,
		Diagnostics: result.Diagnostics,
	}, nil
}

// Drafts lists every stored draft.
func (w *Workflow) Drafts(ctx context.Context) ([]*models.Draft, error) {
	drafts, err := w.persistence.Drafts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	return drafts, nil
}

// DeleteDraft removes a draft.
func (w *Workflow) DeleteDraft(ctx context.Context, id string) error {
	err := w.persistence.DeleteDraft(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", id, err)
	}

	w.publish(ctx, id, events.DraftDeleted{
		BaseEvent: w.baseEvent(events.DraftDeletedEvent),
		DraftID:   id,
	})

	return nil
}

func (w *Workflow) baseEvent(eventType events.EventType) events.BaseEvent {
	if w.eventBus == nil {
		return events.NewBaseEvent("", eventType)
	}

	return events.NewBaseEvent(w.eventBus.GenerateID(), eventType)
}

// publish never fails the caller; publish errors are logged.
func (w *Workflow) publish(ctx context.Context, key string, event eventbus.Event) {
	if w.eventBus == nil {
		return
	}

	err := w.eventBus.Publish(ctx, key, event)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to publish event", "event_type", event.GetType(), "key", key, "error", err)
	}
}
