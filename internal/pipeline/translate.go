package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guardline/incident-agent/internal/ai"
)

const translateMaxTokens = 2048

// Translator produces English translations of Hebrew report text, folding
// reviewer feedback from the previous loop iteration into the request.
type Translator struct {
	inv ai.Invoker
}

// NewTranslator wires a translator to a model client.
func NewTranslator(inv ai.Invoker) *Translator {
	return &Translator{inv: inv}
}

// Translate returns the English translation of text. Empty input returns an
// empty translation without a model call. Feedback from a prior evaluation
// is included only when both the feedback and the previous translation are
// present; a model failure here is fatal for the run and propagates.
func (t *Translator) Translate(ctx context.Context, text, feedback, previous string) (string, error) {
	if text == "" {
		slog.Info("empty input text, skipping translation")
		return "", nil
	}

	var feedbackSection string
	if feedback != "" && previous != "" {
		feedbackSection = fmt.Sprintf(translateFeedbackSection, feedback, previous)
	}

	msgs := []ai.Message{
		{Role: ai.RoleSystem, Content: translateSystemPrompt},
		{Role: ai.RoleUser, Content: fmt.Sprintf(translateUserPrompt, feedbackSection, text)},
	}

	out, err := t.inv.Complete(ctx, msgs, translateMaxTokens)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}
