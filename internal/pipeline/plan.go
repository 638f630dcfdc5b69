package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/guardline/incident-agent/internal/ai"
	"github.com/guardline/incident-agent/internal/types"
)

// planResponse is the wire shape of the classifier's structured output.
type planResponse struct {
	Relevant           bool   `json:"relevant"`
	Reason             string `json:"reason"`
	Location           string `json:"location"`
	Crime              string `json:"crime"`
	RequiresEmailAlert bool   `json:"requires_email_alert"`
}

// Planner classifies translated reports and extracts incident data.
type Planner struct {
	inv ai.Invoker
}

// NewPlanner wires a planner to a model client.
func NewPlanner(inv ai.Invoker) *Planner {
	return &Planner{inv: inv}
}

// Classify decides whether the translated text describes a relevant incident
// and extracts its structured fields. Classification never fails the run:
// every malformed or unusable model response degrades to a NotRelevant
// result carrying the reason.
func (p *Planner) Classify(ctx context.Context, translated string) types.Classification {
	if translated == "" {
		slog.Info("no translated text, skipping classification")
		return types.NotRelevant("No translated text provided")
	}

	req := ai.ToolRequest{
		Name:        "record_classification",
		Description: "Record the incident classification decision.",
		Schema: map[string]interface{}{
			"relevant": map[string]interface{}{
				"type":        "boolean",
				"description": "Whether the event is a crime/terror incident in Judea & Samaria or Jerusalem.",
			},
			"reason": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation when the event is not relevant.",
			},
			"location": map[string]interface{}{
				"type":        "string",
				"description": "Extracted location name (only when relevant).",
			},
			"crime": map[string]interface{}{
				"type":        "string",
				"enum":        crimeEnumValues(),
				"description": "Crime type (only when relevant).",
			},
			"requires_email_alert": map[string]interface{}{
				"type":        "boolean",
				"description": "True only if the location is Jerusalem.",
			},
		},
		Required: []string{"relevant"},
	}

	msgs := []ai.Message{
		{Role: ai.RoleSystem, Content: planSystemPrompt},
		{Role: ai.RoleUser, Content: fmt.Sprintf(planUserPrompt, translated)},
	}

	out, err := ai.InvokeStructured[planResponse](ctx, p.inv, req, msgs, nil)
	if err != nil {
		slog.Error("classification failed", "error", err)
		return types.NotRelevant("Failed to parse LLM response")
	}

	if !out.Relevant {
		reason := out.Reason
		if reason == "" {
			reason = "Event not relevant"
		}
		slog.Info("event not relevant", "reason", reason)
		return types.NotRelevant(reason)
	}

	crime := types.Crime(out.Crime)
	if out.Crime == "" {
		slog.Warn("relevant event missing crime type")
		return types.NotRelevant("Relevant event missing crime type")
	}
	if !crime.IsValid() {
		slog.Warn("relevant event with unknown crime type", "crime", out.Crime)
		return types.NotRelevant("Relevant event missing crime type")
	}

	c := types.Classification{
		Relevant:              true,
		Reason:                "Relevant incident in Judea & Samaria",
		Location:              out.Location,
		Crime:                 crime,
		RequiresPriorityAlert: out.RequiresEmailAlert,
	}
	if c.RequiresPriorityAlert {
		slog.Info("Jerusalem incident detected, priority alert required",
			"location", c.Location, "crime", string(c.Crime))
	} else {
		slog.Info("incident detected",
			"location", c.Location, "crime", string(c.Crime))
	}
	return c
}

func crimeEnumValues() []string {
	values := make([]string, 0, len(types.AllCrimes))
	for _, c := range types.AllCrimes {
		values = append(values, string(c))
	}
	return values
}
