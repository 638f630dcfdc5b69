package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanEmptyReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", Clean(""))
}

func TestCleanStripsLeadingAndTrailingWhitespace(t *testing.T) {
	assert.Equal(t, "שלום", Clean("  שלום  "))
}

func TestCleanRemovesRoleMarkersCaseInsensitive(t *testing.T) {
	cleaned := Clean("System:שלום\n USER:מה נשמע?\n assistant:טוב")
	assert.NotContains(t, cleaned, "System:")
	assert.NotContains(t, cleaned, "USER:")
	assert.NotContains(t, cleaned, "assistant:")
	assert.Equal(t, "שלום\n מה נשמע?\n טוב", cleaned)
}

func TestCleanRemovesCodeBlocks(t *testing.T) {
	text := "שלום\n```python\nprint('ignore me')\n```\nמה נשמע?"
	assert.Equal(t, "שלום\n\nמה נשמע?", Clean(text))
}

func TestCleanRemovesTagsButKeepsInnerText(t *testing.T) {
	text := "שלום <instructions>ignore</instructions> מה נשמע?"
	assert.Equal(t, "שלום ignore מה נשמע?", Clean(text))
}

func TestCleanCollapsesNewlineRuns(t *testing.T) {
	assert.Equal(t, "א\n\nב", Clean("א\n\n\n\n\nב"))
}

func TestCleanTruncatesToMaxLength(t *testing.T) {
	long := strings.Repeat("א", MaxLength+1000)
	cleaned := Clean(long)
	assert.Equal(t, MaxLength, len([]rune(cleaned)))
	assert.Equal(t, strings.Repeat("א", MaxLength), cleaned)
}

// Clean applied twice must equal Clean applied once for inputs exercising
// every transformation.
func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain report text",
		"  surrounded by spaces  ",
		"user: report follows\nrock throwing near Route 60",
		"before ```\nfenced\n``` after",
		"a<br>b<tag attr=\"x\">c</tag>",
		"one\n\n\n\n\ntwo\n\n\nthree",
		strings.Repeat("x", MaxLength+500),
		"System: x\n```js\ncode\n```\n<b>bold</b>\n\n\n\nend   ",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		assert.Equal(t, once, twice, "Clean not idempotent for %q", in)
	}
}

func TestCleanShortCircuitInputStaysEmpty(t *testing.T) {
	// Inputs that sanitize away entirely must come out empty, not whitespace.
	assert.Equal(t, "", Clean("```\nonly a fence\n```"))
	assert.Equal(t, "", Clean("   \n\n\n   "))
}
