package prompt

import (
	"fmt"
	"strings"

	"github.com/shopdraw/drawcheck/internal/domain/analysis"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior signage production reviewer checking shop drawings before fabrication. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Review the drawing for: title block completeness, dimensions and scale callouts, material and finish specifications, mounting and installation details, electrical specifications where illuminated, color/PMS callouts, and revision history.

Requirements:
- Output must be a single JSON object.
- overallStatus is required and must be one of: pass, warning, fail.
- Each check item has an id, a short label, a status (pass|warning|fail), optional notes, and the page number when identifiable.
- Place blocking fabrication problems in criticalIssues, concerns in warnings, confirmed-good checks in passed, and anything that needs a human decision in manualReview.
- Keep items concise; omit empty optional fields.

Schema (example with empty values):
{
  "overallStatus": "<pass|warning|fail>",
  "summary": "<string>",
  "criticalIssues": [{"id": "<string>", "label": "<string>", "status": "fail", "notes": "<string>", "page": 0}],
  "warnings": [],
  "passed": [],
  "manualReview": [],
  "projectType": "<string>",
  "metadata": {"projectName": "<string>", "location": "<string>", "version": "<string>", "drawnBy": "<string>", "pageCount": 0}
}`
}

// GetUserPrompt builds the user message text, appending hint lines for the
// project-context booleans when any are set.
func GetUserPrompt(pctx analysis.ProjectContext) string {
	var b strings.Builder
	b.WriteString("Review the attached shop drawing and respond with the JSON per schema.")
	if pctx.Any() {
		b.WriteString("\nProject context:")
		if pctx.Backlit {
			b.WriteString("\n- The signage is backlit; verify LED layout, power supply sizing, and light bleed control.")
		}
		if pctx.Cutouts {
			b.WriteString("\n- The design includes cutouts; verify router paths and minimum stroke widths.")
		}
		if pctx.Corners {
			b.WriteString("\n- Corner conditions matter; verify returns, seams, and corner radii.")
		}
		if pctx.Logos {
			b.WriteString("\n- Brand logos are present; verify clear space, proportions, and color accuracy.")
		}
	}
	return b.String()
}

// GetUserPromptForURL is the variant for documents staged in the blob
// store: the URL rides in the prompt text instead of an inline attachment.
func GetUserPromptForURL(url string, pctx analysis.ProjectContext) string {
	return fmt.Sprintf("%s\nThe drawing is available at this URL: %s", GetUserPrompt(pctx), url)
}
