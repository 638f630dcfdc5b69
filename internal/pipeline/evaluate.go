package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/guardline/incident-agent/internal/ai"
	"github.com/guardline/incident-agent/internal/types"
)

// Fixed feedback strings for the evaluator's degraded paths.
const (
	feedbackNoTranslation = "No translation provided."
	feedbackParseFailed   = "Evaluation parsing failed."
)

// evalResponse is the wire shape of the evaluator's structured output.
// Score is a pointer so a response that omits it entirely fails validation
// instead of silently scoring zero.
type evalResponse struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

// Evaluator scores a translation attempt against the original text.
type Evaluator struct {
	inv ai.Invoker
}

// NewEvaluator wires an evaluator to a model client.
func NewEvaluator(inv ai.Invoker) *Evaluator {
	return &Evaluator{inv: inv}
}

// Evaluate scores st.TranslatedText and updates the loop-control fields.
//
// The iteration counter increments unconditionally at entry — it counts
// evaluation passes, including the degenerate ones, and is the authoritative
// loop-progress measure. Evaluation unreliability never aborts the run: an
// empty translation and an unparseable model response both degrade to score
// zero with fixed feedback. When the final allowed iteration ends below
// threshold, an advisory exhaustion message is recorded for the caller.
func (e *Evaluator) Evaluate(ctx context.Context, st *State) {
	st.Iteration++

	if st.TranslatedText == "" {
		slog.Info("no translation to evaluate", "iteration", st.Iteration)
		st.Score = 0
		st.Feedback = feedbackNoTranslation
	} else {
		score, feedback := e.invoke(ctx, st.InputText, st.TranslatedText)
		st.Score = score
		st.Feedback = feedback
	}

	slog.Info("evaluated translation",
		"iteration", st.Iteration,
		"score", st.Score)

	if st.Iteration >= st.MaxIterations && st.Score < st.Threshold {
		st.ErrorMessage = fmt.Sprintf(
			"translation quality %.2f below threshold %.2f after %d iterations",
			st.Score, st.Threshold, st.Iteration)
	}
}

// invoke runs the structured evaluation call and normalizes the 0-10 score
// to [0, 1]. Any failure degrades to (0, parse-failed feedback).
func (e *Evaluator) invoke(ctx context.Context, original, translated string) (float64, string) {
	req := ai.ToolRequest{
		Name:        "record_evaluation",
		Description: "Record the translation quality evaluation.",
		Schema: map[string]interface{}{
			"score": map[string]interface{}{
				"type":        "number",
				"description": "Translation quality score from 0 to 10.",
			},
			"feedback": map[string]interface{}{
				"type":        "string",
				"description": "Constructive feedback, or empty string if score >= 7.5.",
			},
		},
		Required: []string{"score", "feedback"},
	}

	msgs := []ai.Message{
		{Role: ai.RoleSystem, Content: evaluateSystemPrompt},
		{Role: ai.RoleUser, Content: fmt.Sprintf(evaluateUserPrompt, original, translated)},
	}

	out, err := ai.InvokeStructured(ctx, e.inv, req, msgs, func(r *evalResponse) error {
		if r.Score == nil {
			return fmt.Errorf("missing score")
		}
		ev := types.Evaluation{Score: *r.Score, Feedback: r.Feedback}
		return ev.Validate()
	})
	if err != nil {
		slog.Error("evaluation failed, degrading to zero score", "error", err)
		return 0, feedbackParseFailed
	}

	return *out.Score / types.EvaluationScoreMax, out.Feedback
}
