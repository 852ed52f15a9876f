package openai

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
)

// resultSchema gates the shape of accepted model output. Lists are
// optional (they default to empty), the overall status is not.
var resultSchema = jsonschema.MustCompileString("result.json", `{
	"type": "object",
	"required": ["overallStatus"],
	"properties": {
		"overallStatus": {"enum": ["pass", "warning", "fail"]},
		"summary": {"type": "string"},
		"criticalIssues": {"$ref": "#/$defs/items"},
		"warnings": {"$ref": "#/$defs/items"},
		"passed": {"$ref": "#/$defs/items"},
		"manualReview": {"$ref": "#/$defs/items"},
		"projectType": {"type": "string"},
		"metadata": {"type": "object"}
	},
	"$defs": {
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"label": {"type": "string"},
					"status": {"type": "string"},
					"notes": {"type": "string"},
					"page": {"type": "integer"}
				}
			}
		}
	}
}`)

// ParseResult turns raw model text into a validated Result. Policy, in
// order, stopping at first success: direct parse when the trimmed text
// starts with '{'; otherwise (or on failure) parse the first balanced
// {...} span; otherwise fail with a truncated raw prefix.
func ParseResult(raw string) (*analysis.Result, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		if res, err := decodeResult(trimmed); err == nil {
			return res, nil
		}
	}
	rest := trimmed
	for {
		span, next, ok := firstJSONObject(rest)
		if !ok {
			break
		}
		if res, err := decodeResult(span); err == nil {
			return res, nil
		}
		rest = rest[next:]
	}
	return nil, analysis.NewUnparsableError(raw)
}

func decodeResult(payload string) (*analysis.Result, error) {
	var shape any
	if err := json.Unmarshal([]byte(payload), &shape); err != nil {
		return nil, err
	}
	if err := resultSchema.Validate(shape); err != nil {
		return nil, err
	}
	var res analysis.Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, err
	}
	// Absent lists become empty, never nil.
	if res.CriticalIssues == nil {
		res.CriticalIssues = []analysis.CheckItem{}
	}
	if res.Warnings == nil {
		res.Warnings = []analysis.CheckItem{}
	}
	if res.Passed == nil {
		res.Passed = []analysis.CheckItem{}
	}
	if res.ManualReview == nil {
		res.ManualReview = []analysis.CheckItem{}
	}
	return &res, nil
}

// firstJSONObject returns the first balanced {...} span in s plus the
// offset just past it, so the caller can keep scanning when the span turns
// out not to be the result object (prose itself may contain braces). It
// tracks brace depth and skips braces inside string literals.
func firstJSONObject(s string) (span string, next int, ok bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if start < 0 {
			if c == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], i + 1, true
			}
		}
	}
	return "", 0, false
}
