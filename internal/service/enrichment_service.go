package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task_tracker/internal/domain"
	"task_tracker/internal/llm"
	"task_tracker/internal/logger"
	"task_tracker/internal/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var errGeneratorDisabled = errors.New("enrichment is disabled")

// EnrichmentService creates tasks and optionally classifies them with a
// generator. Once the base task is stored nothing removes it: later steps
// can only degrade the result.
type EnrichmentService struct {
	tasks    TaskStore
	subtasks SubtaskStore
	runs     RunStore
	gen      llm.Generator
	events   Publisher
	timeout  time.Duration
}

// NewEnrichmentService wires the orchestrator. gen may be nil when
// enrichment is disabled; runs and events may be nil as well.
func NewEnrichmentService(tasks TaskStore, subtasks SubtaskStore, runs RunStore, gen llm.Generator, events Publisher, timeout time.Duration) *EnrichmentService {
	if events == nil {
		events = nopPublisher{}
	}
	return &EnrichmentService{
		tasks:    tasks,
		subtasks: subtasks,
		runs:     runs,
		gen:      gen,
		events:   events,
		timeout:  timeout,
	}
}

// CreateEnrichedTask stores a new task for userID and, when useAI is set,
// attaches a label and subtasks produced by the generator. Only a missing
// user, an empty title or a failed base insert are returned as errors.
func (s *EnrichmentService) CreateEnrichedTask(ctx context.Context, userID uuid.UUID, title, description string, useAI bool) (*domain.EnrichedTask, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: no authenticated user", domain.ErrUnauthorized)
	}
	title, ok := domain.NormalizeTitle(title)
	if !ok {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	task := &domain.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
	}
	if !useAI {
		task.Label = domain.LabelPtr(domain.DefaultLabel)
	}

	if err := s.createBase(ctx, task); err != nil {
		return nil, err
	}
	task.Subtasks = []domain.Subtask{}
	s.events.Publish(ctx, domain.NewEvent(domain.EventTaskCreated, userID, task.ID, task))

	if !useAI {
		return &domain.EnrichedTask{Task: *task, Enrichment: domain.EnrichmentReport{Requested: false}}, nil
	}

	started := time.Now()
	report := domain.NewEnrichmentReport()
	log := logger.WithContext(ctx).With("task_id", task.ID.String())

	outcome := s.generate(ctx, BuildPrompt(task.Title, task.Description))
	report.Outcome = outcome.Kind

	result := *task
	switch outcome.Kind {
	case domain.OutcomeTransportFailure, domain.OutcomeUnavailable:
		report.Steps[domain.StepGenerate] = domain.StepFailed
		log.Warn("enrichment generation failed", "step", domain.StepGenerate, "outcome", outcome.Kind, "error_kind", llm.ErrorKind(outcome.Err), "error", outcome.Err)
	case domain.OutcomeParseFailure, domain.OutcomeSchemaViolation:
		report.Steps[domain.StepGenerate] = domain.StepOK
		report.Steps[domain.StepParse] = domain.StepFailed
		log.Warn("enrichment output rejected", "step", domain.StepParse, "outcome", outcome.Kind, "error", outcome.Err, "raw_output", outcome.Raw)
	case domain.OutcomeSuccess:
		report.Steps[domain.StepGenerate] = domain.StepOK
		report.Steps[domain.StepParse] = domain.StepOK
		s.applyOutcome(ctx, &result, outcome, &report)
	}

	for step, status := range report.Steps {
		if status == domain.StepFailed {
			EnrichmentStepFailures.WithLabelValues(string(step)).Inc()
		}
	}
	EnrichmentOutcomes.WithLabelValues(string(outcome.Kind)).Inc()

	took := time.Since(started)
	s.recordRun(ctx, &result, outcome, report, took)
	if report.Degraded() {
		log.Warn("task enrichment degraded", "outcome", outcome.Kind, "steps", report.Steps, "duration_ms", took.Milliseconds())
	} else {
		log.Info("task enriched", "label", outcome.Label, "subtasks", len(result.Subtasks), "duration_ms", took.Milliseconds())
	}

	enriched := &domain.EnrichedTask{Task: result, Enrichment: report}
	s.events.Publish(ctx, domain.NewEvent(domain.EventTaskEnriched, userID, result.ID, enriched))
	return enriched, nil
}

func (s *EnrichmentService) createBase(ctx context.Context, task *domain.Task) error {
	ctx, span := telemetry.StartSpan(ctx, "enrichment.create_base")
	defer span.End()

	if err := s.tasks.Create(ctx, task); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert task")
		logger.WithContext(ctx).Error("create task failed", "user_id", task.UserID.String(), "error", err)
		return fmt.Errorf("%w: create task: %v", domain.ErrStoreWrite, err)
	}
	span.SetAttributes(attribute.String("task.id", task.ID.String()))
	return nil
}

// generate performs the single generator round trip and classifies its text.
func (s *EnrichmentService) generate(ctx context.Context, prompt string) domain.EnrichmentOutcome {
	if s.gen == nil {
		return domain.UnavailableOutcome(errGeneratorDisabled)
	}

	ctx, span := telemetry.StartSpan(ctx, "enrichment.generate", attribute.String("generator", s.gen.Name()))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		GeneratorLatency.WithLabelValues(s.gen.Name(), "error").Observe(time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate")
		return domain.TransportFailureOutcome(err)
	}
	GeneratorLatency.WithLabelValues(s.gen.Name(), "ok").Observe(time.Since(start).Seconds())

	outcome := ParseOutcome(raw)
	outcome.Raw = truncateRaw(outcome.Raw, maxRawOutput)
	span.SetAttributes(attribute.String("enrichment.outcome", string(outcome.Kind)))
	return outcome
}

// applyOutcome writes the label and subtasks. result always mirrors what is
// stored: a failed label write leaves the base label, a failed subtask
// insert leaves no subtasks.
func (s *EnrichmentService) applyOutcome(ctx context.Context, result *domain.Task, outcome domain.EnrichmentOutcome, report *domain.EnrichmentReport) {
	log := logger.WithContext(ctx).With("task_id", result.ID.String())

	lctx, span := telemetry.StartSpan(ctx, "enrichment.set_label", attribute.String("label", string(outcome.Label)))
	stored, err := s.tasks.SetLabel(lctx, result.UserID, result.ID, outcome.Label)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "set label")
		report.Steps[domain.StepLabel] = domain.StepFailed
		log.Error("label update failed", "step", domain.StepLabel, "label", outcome.Label, "error", err, "raw_output", outcome.Raw)
	} else {
		*result = *stored
		report.Steps[domain.StepLabel] = domain.StepOK
	}
	span.End()
	result.Subtasks = []domain.Subtask{}

	if len(outcome.Subtasks) == 0 {
		return
	}

	sctx, span := telemetry.StartSpan(ctx, "enrichment.insert_subtasks", attribute.Int("subtasks", len(outcome.Subtasks)))
	defer span.End()

	inserted, err := s.subtasks.InsertBatch(sctx, result.UserID, result.ID, outcome.Subtasks)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert subtasks")
		report.Steps[domain.StepSubtasks] = domain.StepFailed
		log.Error("subtask insert failed", "step", domain.StepSubtasks, "count", len(outcome.Subtasks), "error", err, "raw_output", outcome.Raw)
		return
	}
	result.Subtasks = inserted
	report.Steps[domain.StepSubtasks] = domain.StepOK
}

func (s *EnrichmentService) recordRun(ctx context.Context, task *domain.Task, outcome domain.EnrichmentOutcome, report domain.EnrichmentReport, took time.Duration) {
	if s.runs == nil {
		return
	}

	steps := make(map[domain.Step]domain.StepStatus, len(report.Steps))
	for k, v := range report.Steps {
		steps[k] = v
	}
	run := &domain.EnrichmentRun{
		TaskID:     task.ID,
		UserID:     task.UserID,
		Outcome:    outcome.Kind,
		Steps:      steps,
		RawOutput:  outcome.Raw,
		DurationMs: took.Milliseconds(),
	}
	if outcome.Err != nil {
		run.Error = outcome.Err.Error()
		run.ErrorKind = llm.ErrorKind(outcome.Err)
	}

	if err := s.runs.Create(ctx, run); err != nil {
		logger.WithContext(ctx).Warn("record enrichment run failed", "task_id", task.ID.String(), "error", err)
	}
}
