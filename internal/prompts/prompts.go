// Package prompts holds the built-in claim-extraction prompts and the
// prompt-file selection logic. A deployment can override the user prompt with
// a named file under the configured prompt directory or an absolute path.
package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExtractionSystemPrompt defines the extractor's role and the output contract.
// The response must be a bare JSON array so the boundary parser can validate
// it without stripping prose.
const ExtractionSystemPrompt = `You are a claim extraction assistant for impact reports. You read one page of a report and extract verifiable linked claims.

Rules:
- Extract only claims that are explicitly supported by the page text.
- Each claim is a triple: subject, claim (the predicate, e.g. "impact", "rated", "same_as"), and an optional object, plus a one-sentence statement quoting or paraphrasing the evidence.
- Subjects and objects should be URLs when the page names one; otherwise use the entity name and mark it for verification.
- Optional fields when the page supports them: howKnown (default "DOCUMENT"), confidence (0-1), aspect, score, stars, amt, unit, howMeasured.
- Respond with a JSON array only. No markdown, no commentary. Respond with [] when the page contains no extractable claims.`

// ExtractionUserPrompt precedes the page text in the user message.
const ExtractionUserPrompt = `Extract linked claims from the following report page. Return a JSON array of claim objects with fields: subject, claim, object, statement, howKnown, confidence, aspect, score, stars, amt, unit, howMeasured. Omit fields you cannot support from the text.

Page text:
`

// Load resolves the user prompt for extraction calls.
// Parameters:
//   - name: prompt file selector; empty uses the built-in prompt, an absolute
//     path is read as-is, anything else is looked up under dir (with or
//     without a .md suffix).
//   - dir: prompt directory for named lookups.
// Returns:
//   - string: prompt text.
//   - error: non-nil when a named or absolute file cannot be read.
func Load(name, dir string) (string, error) {
	if name == "" {
		return ExtractionUserPrompt, nil
	}

	if filepath.IsAbs(name) {
		return readPrompt(name)
	}

	for _, candidate := range []string{
		filepath.Join(dir, name+".md"),
		filepath.Join(dir, name),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return readPrompt(candidate)
		}
	}

	return "", fmt.Errorf("prompt file %q not found in %s", name, dir)
}

func readPrompt(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
