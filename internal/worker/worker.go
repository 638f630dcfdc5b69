// Package worker turns a classification into a deterministic action plan
// and executes it: alert dispatch first when the incident needs a priority
// alert, then durable persistence. Planning is rule-based, not model-based,
// so a malformed model response can never produce an unknown action.
package worker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/guardline/incident-agent/internal/alert"
	"github.com/guardline/incident-agent/internal/store"
	"github.com/guardline/incident-agent/internal/types"
)

// ActionKind names one executable step of a plan.
type ActionKind string

const (
	ActionAlert   ActionKind = "alert"
	ActionPersist ActionKind = "persist"
)

// Action binds a step to the incident it operates on.
type Action struct {
	Kind     ActionKind
	Incident types.Incident
}

// BuildPlan derives the ordered action list for a classification. A
// non-relevant classification yields an empty plan. Priority incidents are
// alerted before they are persisted; everything relevant is persisted.
func BuildPlan(c types.Classification, now time.Time) []Action {
	if !c.Relevant {
		return nil
	}
	inc := types.Incident{
		Location:  c.Location,
		Crime:     c.Crime,
		CreatedAt: now,
	}
	if c.RequiresPriorityAlert {
		return []Action{
			{Kind: ActionAlert, Incident: inc},
			{Kind: ActionPersist, Incident: inc},
		}
	}
	return []Action{{Kind: ActionPersist, Incident: inc}}
}

// Alerter dispatches a single incident alert, absorbing failures.
type Alerter interface {
	Send(ctx context.Context, inc types.Incident) alert.SendResult
}

// Persister stores a single incident idempotently.
type Persister interface {
	Upsert(ctx context.Context, inc types.Incident) (store.UpsertResult, error)
}

// Result reports what the worker did for one pipeline run.
type Result struct {
	Summary   string
	ShouldEnd bool
	Alert     *alert.SendResult
	Upsert    *store.UpsertResult
}

// Worker executes action plans against injected alert and store backends.
type Worker struct {
	alerts Alerter
	stores Persister
	now    func() time.Time
}

// New wires a worker with its action backends.
func New(a Alerter, p Persister) *Worker {
	return &Worker{alerts: a, stores: p, now: time.Now}
}

// Process plans and executes the actions for a classification. Execution is
// strictly in plan order, and a failed action never prevents the remaining
// ones from running. The worker always completes in one pass.
//
// An alert counts as executed even when delivery failed: the alert path
// absorbs its errors and the step itself ran to completion. A persist only
// counts when the store accepted the write.
func (w *Worker) Process(ctx context.Context, c types.Classification) Result {
	plan := BuildPlan(c, w.now())
	if len(plan) == 0 {
		reason := c.Reason
		if reason == "" {
			reason = "No processing required"
		}
		slog.Info("worker skipping processing", "reason", reason)
		return Result{
			Summary:   "Skipped processing: " + reason,
			ShouldEnd: true,
		}
	}

	result := Result{ShouldEnd: true}
	var executed []string

	for _, action := range plan {
		slog.Info("executing action",
			"action", string(action.Kind),
			"location", action.Incident.Location,
			"crime", string(action.Incident.Crime))

		switch action.Kind {
		case ActionAlert:
			res := w.alerts.Send(ctx, action.Incident)
			result.Alert = &res
			executed = append(executed, string(ActionAlert))
		case ActionPersist:
			res, err := w.stores.Upsert(ctx, action.Incident)
			if err != nil {
				slog.Error("persist action failed", "error", err)
				continue
			}
			result.Upsert = &res
			executed = append(executed, string(ActionPersist))
		}
	}

	if len(executed) > 0 {
		result.Summary = "Executed: " + strings.Join(executed, ", ")
	} else {
		result.Summary = "No actions taken"
	}
	return result
}
