package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeKind tags the result of one generator round trip.
type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeParseFailure     OutcomeKind = "parse_failure"
	OutcomeSchemaViolation  OutcomeKind = "schema_violation"
	OutcomeTransportFailure OutcomeKind = "transport_failure"
	OutcomeUnavailable      OutcomeKind = "unavailable"
)

// EnrichmentOutcome is the tagged result of generating and parsing a
// classification. Label and Subtasks are only meaningful for OutcomeSuccess.
type EnrichmentOutcome struct {
	Kind     OutcomeKind
	Label    Label
	Subtasks []string
	Raw      string
	Err      error
}

func SuccessOutcome(label Label, subtasks []string, raw string) EnrichmentOutcome {
	return EnrichmentOutcome{Kind: OutcomeSuccess, Label: label, Subtasks: subtasks, Raw: raw}
}

func ParseFailureOutcome(raw string, err error) EnrichmentOutcome {
	return EnrichmentOutcome{Kind: OutcomeParseFailure, Raw: raw, Err: err}
}

func SchemaViolationOutcome(raw string, err error) EnrichmentOutcome {
	return EnrichmentOutcome{Kind: OutcomeSchemaViolation, Raw: raw, Err: err}
}

func TransportFailureOutcome(err error) EnrichmentOutcome {
	return EnrichmentOutcome{Kind: OutcomeTransportFailure, Err: err}
}

func UnavailableOutcome(err error) EnrichmentOutcome {
	return EnrichmentOutcome{Kind: OutcomeUnavailable, Err: err}
}

// Step names one stage of the enrichment pipeline after base creation.
type Step string

const (
	StepGenerate Step = "generate"
	StepParse    Step = "parse"
	StepLabel    Step = "label"
	StepSubtasks Step = "subtasks"
)

// StepStatus is the observable result of a single step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// EnrichmentReport is returned alongside the task so callers can tell a
// fully enriched task from a degraded one.
type EnrichmentReport struct {
	Requested bool                `json:"requested"`
	Outcome   OutcomeKind         `json:"outcome,omitempty"`
	Steps     map[Step]StepStatus `json:"steps,omitempty"`
}

// NewEnrichmentReport starts a report with every step skipped.
func NewEnrichmentReport() EnrichmentReport {
	return EnrichmentReport{
		Requested: true,
		Steps: map[Step]StepStatus{
			StepGenerate: StepSkipped,
			StepParse:    StepSkipped,
			StepLabel:    StepSkipped,
			StepSubtasks: StepSkipped,
		},
	}
}

// Degraded reports whether any step failed.
func (r EnrichmentReport) Degraded() bool {
	for _, s := range r.Steps {
		if s == StepFailed {
			return true
		}
	}
	return false
}

// EnrichedTask is the response of the create-with-enrichment operation.
type EnrichedTask struct {
	Task
	Enrichment EnrichmentReport `json:"enrichment"`
}

// EnrichmentRun is the persisted record of one enrichment attempt.
type EnrichmentRun struct {
	ID         uuid.UUID           `db:"run_id" json:"run_id"`
	TaskID     uuid.UUID           `db:"task_id" json:"task_id"`
	UserID     uuid.UUID           `db:"user_id" json:"user_id"`
	Outcome    OutcomeKind         `db:"outcome" json:"outcome"`
	Steps      map[Step]StepStatus `db:"steps" json:"steps"`
	RawOutput  string              `db:"raw_output" json:"raw_output,omitempty"`
	Error      string              `db:"error" json:"error,omitempty"`
	ErrorKind  string              `db:"error_kind" json:"error_kind,omitempty"`
	DurationMs int64               `db:"duration_ms" json:"duration_ms"`
	CreatedAt  time.Time           `db:"created_at" json:"created_at"`
}
