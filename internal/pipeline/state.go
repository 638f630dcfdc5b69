// Package pipeline implements the incident processing run: sanitize,
// translate, evaluate in a quality-gated loop, classify, then hand off to
// the worker for action execution.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/guardline/incident-agent/internal/types"
	"github.com/guardline/incident-agent/internal/worker"
)

// Phase is the controller's position in the run state machine.
type Phase string

const (
	// PhaseTranslating means the run is producing a translation attempt.
	PhaseTranslating Phase = "translating"
	// PhaseEvaluating means the run is scoring the current translation.
	PhaseEvaluating Phase = "evaluating"
	// PhaseAdvance means quality was met and classification may proceed.
	PhaseAdvance Phase = "advance"
	// PhaseAbort is terminal: quality was never met within the budget.
	PhaseAbort Phase = "abort"
	// PhaseSkip is terminal: nothing relevant to act on.
	PhaseSkip Phase = "skip"
	// PhaseDone is terminal: actions were executed.
	PhaseDone Phase = "done"
)

// Terminal reports whether the phase ends the run.
func (p Phase) Terminal() bool {
	return p == PhaseAbort || p == PhaseSkip || p == PhaseDone
}

// Default loop-control settings.
const (
	DefaultThreshold     = 0.75
	DefaultMaxIterations = 5
)

// State carries one run through the pipeline. The loop-control fields
// (Score, Iteration, Threshold, MaxIterations) drive the controller's
// routing decisions; the rest accumulate results for the caller.
type State struct {
	RunID string

	InputText      string
	TranslatedText string

	// Score is the normalized translation quality in [0, 1].
	Score         float64
	Feedback      string
	ErrorMessage  string
	Iteration     int
	MaxIterations int
	Threshold     float64

	Classification *types.Classification
	WorkerResult   *worker.Result

	Phase Phase
}

// NewState initializes a run over the given (already sanitized) input text.
func NewState(inputText string) *State {
	return &State{
		RunID:         uuid.NewString(),
		InputText:     inputText,
		Threshold:     DefaultThreshold,
		MaxIterations: DefaultMaxIterations,
		Phase:         PhaseTranslating,
	}
}
