package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scorePayload struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

func TestDecodeJSONDirectParse(t *testing.T) {
	out, err := DecodeJSON[scorePayload](`{"score": 8.5, "feedback": "good"}`)
	require.NoError(t, err)
	assert.Equal(t, 8.5, out.Score)
	assert.Equal(t, "good", out.Feedback)
}

func TestDecodeJSONWithSurroundingWhitespace(t *testing.T) {
	out, err := DecodeJSON[scorePayload]("\n\n  {\"score\": 3, \"feedback\": \"weak\"}  \n")
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.Score)
}

func TestDecodeJSONFencedBlock(t *testing.T) {
	text := "Here is my evaluation:\n```json\n{\"score\": 7, \"feedback\": \"\"}\n```\nLet me know if you need more."
	out, err := DecodeJSON[scorePayload](text)
	require.NoError(t, err)
	assert.Equal(t, 7.0, out.Score)
}

func TestDecodeJSONBareFence(t *testing.T) {
	text := "```\n{\"score\": 2, \"feedback\": \"missing content\"}\n```"
	out, err := DecodeJSON[scorePayload](text)
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Score)
	assert.Equal(t, "missing content", out.Feedback)
}

func TestDecodeJSONBraceSubstring(t *testing.T) {
	text := `The translation scores as follows: {"score": 9, "feedback": ""} based on accuracy.`
	out, err := DecodeJSON[scorePayload](text)
	require.NoError(t, err)
	assert.Equal(t, 9.0, out.Score)
}

func TestDecodeJSONNestedObject(t *testing.T) {
	type nested struct {
		Relevant bool `json:"relevant"`
		Data     struct {
			Location string `json:"location"`
		} `json:"data"`
	}
	text := `Result: {"relevant": true, "data": {"location": "Hebron"}} done.`
	out, err := DecodeJSON[nested](text)
	require.NoError(t, err)
	assert.True(t, out.Relevant)
	assert.Equal(t, "Hebron", out.Data.Location)
}

func TestDecodeJSONNoObjectIsParseError(t *testing.T) {
	for _, text := range []string{
		"",
		"   ",
		"I could not evaluate this translation.",
		"score: 8, feedback: none",
		"} backwards {",
	} {
		_, err := DecodeJSON[scorePayload](text)
		require.Error(t, err, "expected error for %q", text)
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr, "expected ParseError for %q", text)
	}
}

func TestDecodeJSONMalformedObjectIsParseError(t *testing.T) {
	_, err := DecodeJSON[scorePayload](`prefix {"score": 8, "feedback": } suffix`)
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}
