package pipeline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/guardline/incident-agent/internal/ai"
	"github.com/guardline/incident-agent/internal/types"
	"github.com/guardline/incident-agent/internal/worker"
)

// scripted is one queued fake model response.
type scripted struct {
	text string
	err  error
}

// fakeInvoker serves queued responses: completions from completeQueue,
// structured calls from structuredQueue. Calls beyond the queue fail, so a
// test that over-consumes the script surfaces it as an error.
type fakeInvoker struct {
	completeQueue   []scripted
	structuredQueue []scripted

	completeMsgs   [][]ai.Message
	structuredReqs []ai.ToolRequest
}

func (f *fakeInvoker) Complete(_ context.Context, msgs []ai.Message, _ int) (string, error) {
	f.completeMsgs = append(f.completeMsgs, msgs)
	if len(f.completeQueue) == 0 {
		return "", errors.New("unexpected Complete call")
	}
	next := f.completeQueue[0]
	f.completeQueue = f.completeQueue[1:]
	return next.text, next.err
}

func (f *fakeInvoker) CompleteStructured(_ context.Context, req ai.ToolRequest, _ []ai.Message) (json.RawMessage, error) {
	f.structuredReqs = append(f.structuredReqs, req)
	if len(f.structuredQueue) == 0 {
		return nil, errors.New("unexpected CompleteStructured call")
	}
	next := f.structuredQueue[0]
	f.structuredQueue = f.structuredQueue[1:]
	if next.err != nil {
		return nil, next.err
	}
	return json.RawMessage(next.text), nil
}

// fakeExecutor records classifications and reports a worker result shaped
// the way the real worker would for them.
type fakeExecutor struct {
	calls []types.Classification
}

func (f *fakeExecutor) Process(_ context.Context, c types.Classification) worker.Result {
	f.calls = append(f.calls, c)
	if !c.Relevant {
		return worker.Result{Summary: "Skipped processing: " + c.Reason, ShouldEnd: true}
	}
	return worker.Result{Summary: "Executed: persist", ShouldEnd: true}
}

func evalJSON(score float64, feedback string) scripted {
	doc, _ := json.Marshal(map[string]interface{}{"score": score, "feedback": feedback})
	return scripted{text: string(doc)}
}
