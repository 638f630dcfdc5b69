package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardline/incident-agent/internal/ai"
)

func TestTranslateEmptyInputSkipsModelCall(t *testing.T) {
	inv := &fakeInvoker{}
	tr := NewTranslator(inv)

	out, err := tr.Translate(context.Background(), "", "feedback", "previous")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, inv.completeMsgs, "empty input must not reach the model")
}

func TestTranslateReturnsTrimmedText(t *testing.T) {
	inv := &fakeInvoker{completeQueue: []scripted{{text: "  Rocks were thrown at a bus near Hebron.\n"}}}
	tr := NewTranslator(inv)

	out, err := tr.Translate(context.Background(), "זריקת אבנים על אוטובוס ליד חברון", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Rocks were thrown at a bus near Hebron.", out)
}

func TestTranslatePromptWithoutFeedback(t *testing.T) {
	inv := &fakeInvoker{completeQueue: []scripted{{text: "translation"}}}
	tr := NewTranslator(inv)

	_, err := tr.Translate(context.Background(), "שלום", "", "")
	require.NoError(t, err)
	require.Len(t, inv.completeMsgs, 1)

	msgs := inv.completeMsgs[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Equal(t, ai.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Text to translate:\nשלום")
	assert.NotContains(t, msgs[1].Content, "previous translation attempt")
}

func TestTranslateFeedbackRequiresBothParts(t *testing.T) {
	tests := []struct {
		name        string
		feedback    string
		previous    string
		wantSection bool
	}{
		{"both present", "be more literal", "old translation", true},
		{"feedback only", "be more literal", "", false},
		{"previous only", "", "old translation", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &fakeInvoker{completeQueue: []scripted{{text: "translation"}}}
			tr := NewTranslator(inv)

			_, err := tr.Translate(context.Background(), "שלום", tt.feedback, tt.previous)
			require.NoError(t, err)
			require.Len(t, inv.completeMsgs, 1)

			user := inv.completeMsgs[0][1].Content
			if tt.wantSection {
				assert.Contains(t, user, "address this feedback")
				assert.Contains(t, user, tt.feedback)
				assert.Contains(t, user, tt.previous)
			} else {
				assert.NotContains(t, user, "address this feedback")
			}
		})
	}
}

func TestTranslateFailurePropagates(t *testing.T) {
	boom := errors.New("api down")
	inv := &fakeInvoker{completeQueue: []scripted{{err: boom}}}
	tr := NewTranslator(inv)

	_, err := tr.Translate(context.Background(), "שלום", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
