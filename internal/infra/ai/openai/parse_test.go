package openai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
)

const passPayload = `{"overallStatus":"pass","summary":"clean drawing","criticalIssues":[],"warnings":[],"passed":[{"id":"1","label":"Title block","status":"pass","notes":"ok"}]}`

func TestParseResultDirect(t *testing.T) {
	res, err := ParseResult(passPayload)
	require.NoError(t, err)

	assert.Equal(t, analysis.StatusPass, res.OverallStatus)
	assert.Equal(t, "clean drawing", res.Summary)
	require.Len(t, res.Passed, 1)
	assert.Equal(t, "Title block", res.Passed[0].Label)
	assert.Empty(t, res.CriticalIssues)
}

func TestParseResultDirectWithWhitespace(t *testing.T) {
	res, err := ParseResult("\n  " + passPayload + "\n")
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusPass, res.OverallStatus)
}

func TestParseResultProseWrapped(t *testing.T) {
	raw := "Here is the checklist you asked for:\n" + passPayload + "\nLet me know if anything is unclear."
	res, err := ParseResult(raw)
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusPass, res.OverallStatus)
	require.Len(t, res.Passed, 1)
}

func TestParseResultNestedBracesInProse(t *testing.T) {
	// braces in the prose before the object must not derail extraction
	raw := "Note: fields use the {key {nested} value} convention. Result:\n" +
		`{"overallStatus":"warning","summary":"check mounting {bracket} detail","warnings":[{"id":"w1","label":"Mounting","status":"warning"}]}`
	res, err := ParseResult(raw)
	require.NoError(t, err)

	assert.Equal(t, analysis.StatusWarning, res.OverallStatus)
	assert.Equal(t, "check mounting {bracket} detail", res.Summary)
	require.Len(t, res.Warnings, 1)
}

func TestParseResultBracesInsideStrings(t *testing.T) {
	raw := `{"overallStatus":"fail","summary":"dimension string \"{w} x {h}\" is unresolved","criticalIssues":[{"id":"c1","label":"Dimensions","status":"fail","page":2}]}`
	res, err := ParseResult(raw)
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusFail, res.OverallStatus)
	require.Len(t, res.CriticalIssues, 1)
	assert.Equal(t, 2, res.CriticalIssues[0].Page)
}

func TestParseResultMissingListsDefaultEmpty(t *testing.T) {
	res, err := ParseResult(`{"overallStatus":"pass","summary":"ok"}`)
	require.NoError(t, err)

	assert.NotNil(t, res.CriticalIssues)
	assert.NotNil(t, res.Warnings)
	assert.NotNil(t, res.Passed)
	assert.NotNil(t, res.ManualReview)
	assert.Empty(t, res.CriticalIssues)
	assert.Empty(t, res.ManualReview)
}

func TestParseResultProseOnly(t *testing.T) {
	_, err := ParseResult("I could not review this drawing, the file appears blank.")
	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrUnparsableResponse))
	assert.Contains(t, err.Error(), "appears blank")
}

func TestParseResultEmpty(t *testing.T) {
	_, err := ParseResult("")
	assert.True(t, errors.Is(err, analysis.ErrUnparsableResponse))
}

func TestParseResultLongPrefixTruncated(t *testing.T) {
	long := ""
	for i := 0; i < 50; i++ {
		long += "no json here "
	}
	_, err := ParseResult(long)
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 300)
}

func TestParseResultMissingStatusRejected(t *testing.T) {
	_, err := ParseResult(`{"summary":"ok","passed":[]}`)
	assert.True(t, errors.Is(err, analysis.ErrUnparsableResponse))
}

func TestParseResultInvalidStatusRejected(t *testing.T) {
	_, err := ParseResult(`{"overallStatus":"maybe","summary":"ok"}`)
	assert.True(t, errors.Is(err, analysis.ErrUnparsableResponse))
}

func TestFirstJSONObjectSpans(t *testing.T) {
	span, next, ok := firstJSONObject(`prefix {"a":1} suffix`)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, span)
	assert.Equal(t, len(`prefix {"a":1}`), next)

	_, _, ok = firstJSONObject("no braces at all")
	assert.False(t, ok)

	// unbalanced opening brace never terminates
	_, _, ok = firstJSONObject(`{"a": 1`)
	assert.False(t, ok)
}
