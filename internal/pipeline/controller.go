package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/guardline/incident-agent/internal/ai"
	"github.com/guardline/incident-agent/internal/sanitize"
	"github.com/guardline/incident-agent/internal/types"
	"github.com/guardline/incident-agent/internal/worker"
)

// ActionExecutor is the worker surface the controller hands a finished
// classification to.
type ActionExecutor interface {
	Process(ctx context.Context, c types.Classification) worker.Result
}

// Controller drives one run through the translate/evaluate loop and on to
// classification and action execution.
type Controller struct {
	translator *Translator
	evaluator  *Evaluator
	planner    *Planner
	worker     ActionExecutor

	threshold     float64
	maxIterations int
}

// Option adjusts controller construction.
type Option func(*Controller)

// WithThreshold overrides the quality threshold for advancing past the
// translation loop.
func WithThreshold(t float64) Option {
	return func(c *Controller) { c.threshold = t }
}

// WithMaxIterations overrides the translation loop budget.
func WithMaxIterations(n int) Option {
	return func(c *Controller) { c.maxIterations = n }
}

// NewController wires the pipeline steps around a shared model client and a
// worker for action execution.
func NewController(inv ai.Invoker, w ActionExecutor, opts ...Option) *Controller {
	c := &Controller{
		translator:    NewTranslator(inv),
		evaluator:     NewEvaluator(inv),
		planner:       NewPlanner(inv),
		worker:        w,
		threshold:     DefaultThreshold,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// routeAfterEvaluate decides the next phase once a translation has been
// scored. The success check runs strictly before the exhaustion check, so
// meeting the threshold on the final allowed iteration still advances.
// Equality counts as success.
func routeAfterEvaluate(st *State) Phase {
	if st.Score >= st.Threshold {
		return PhaseAdvance
	}
	if st.Iteration >= st.MaxIterations {
		return PhaseAbort
	}
	return PhaseTranslating
}

// routeAfterPlan decides the terminal-bound phase once classification is
// done. Both branches go through the worker: a NotRelevant classification
// yields an empty action plan and a skip summary rather than bypassing it.
func routeAfterPlan(c types.Classification) Phase {
	if !c.Relevant {
		return PhaseSkip
	}
	return PhaseDone
}

// Run executes the full pipeline over raw report text and returns the final
// state. Raw input is sanitized before anything touches a model. Only a
// translation failure returns an error; every other problem degrades into
// the state's result fields.
func (c *Controller) Run(ctx context.Context, rawText string) (*State, error) {
	st := NewState(sanitize.Clean(rawText))
	st.Threshold = c.threshold
	st.MaxIterations = c.maxIterations

	slog.Info("starting pipeline run",
		"run_id", st.RunID,
		"threshold", st.Threshold,
		"max_iterations", st.MaxIterations)

	for {
		translated, err := c.translator.Translate(ctx, st.InputText, st.Feedback, st.TranslatedText)
		if err != nil {
			return st, fmt.Errorf("run %s: %w", st.RunID, err)
		}
		st.TranslatedText = translated

		st.Phase = PhaseEvaluating
		c.evaluator.Evaluate(ctx, st)

		st.Phase = routeAfterEvaluate(st)
		if st.Phase != PhaseTranslating {
			break
		}
		slog.Info("quality below threshold, looping",
			"run_id", st.RunID,
			"iteration", st.Iteration,
			"score", st.Score)
	}

	if st.Phase == PhaseAbort {
		slog.Warn("aborting run, quality budget exhausted",
			"run_id", st.RunID,
			"score", st.Score,
			"error_message", st.ErrorMessage)
		return st, nil
	}

	classification := c.planner.Classify(ctx, st.TranslatedText)
	st.Classification = &classification

	result := c.worker.Process(ctx, classification)
	st.WorkerResult = &result
	st.Phase = routeAfterPlan(classification)

	slog.Info("pipeline run finished",
		"run_id", st.RunID,
		"phase", string(st.Phase),
		"summary", result.Summary)
	return st, nil
}
