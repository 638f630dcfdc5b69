package ai

import (
	"context"
	"encoding/json"
	"log/slog"
)

// InvokeStructured obtains a schema-valid T from the model.
//
// It first tries the tool-constrained invocation path. Provider structured
// output is not fully reliable, so on any failure there it falls back to a
// plain free-text completion over the same messages and extracts a JSON
// object from the raw response (see DecodeJSON). Whichever path produced the
// object, validate runs last and its failure is reported as a *SchemaError —
// the fallback buys resilience without giving up the validation guarantee.
//
// Returns *ParseError when no JSON object could be located and *SchemaError
// when the object violates its constraints.
func InvokeStructured[T any](ctx context.Context, inv Invoker, req ToolRequest, msgs []Message, validate func(*T) error) (T, error) {
	var zero T

	out, err := invokeNative[T](ctx, inv, req, msgs)
	if err != nil {
		slog.Warn("structured output failed, falling back to JSON parse",
			"tool", req.Name,
			"error", err)

		text, cerr := inv.Complete(ctx, msgs, req.MaxTokens)
		if cerr != nil {
			return zero, cerr
		}
		out, err = DecodeJSON[T](text)
		if err != nil {
			return zero, err
		}
	}

	if validate != nil {
		if verr := validate(&out); verr != nil {
			return zero, &SchemaError{Err: verr}
		}
	}
	return out, nil
}

func invokeNative[T any](ctx context.Context, inv Invoker, req ToolRequest, msgs []Message) (T, error) {
	var out T
	raw, err := inv.CompleteStructured(ctx, req, msgs)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}
