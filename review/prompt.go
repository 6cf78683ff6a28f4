// Package review builds the review prompt and runs the fetch, generate and post pipeline.
package review

import (
	"fmt"

	"github.com/shipitai/prreview/i18n"
)

// MaxDiffChars is how many characters of the diff are sent to the model.
// The cut is a plain character offset and may land mid-line or mid-hunk.
// Characters are Unicode code points, so a character outside the BMP (an emoji) counts once, not as two UTF-16 units.
const MaxDiffChars = 5000

// TruncateDiff returns the first maxChars characters (runes) of diff.
func TruncateDiff(diff string, maxChars int) string {
	count := 0
	for i := range diff {
		if count == maxChars {
			return diff[:i]
		}
		count++
	}
	return diff
}

// PromptBuilder renders the localized review instruction.
type PromptBuilder struct {
	trans *i18n.Translations
}

// NewPromptBuilder creates a prompt builder for the given translations.
func NewPromptBuilder(trans *i18n.Translations) *PromptBuilder {
	return &PromptBuilder{trans: trans}
}

// Build constructs the prompt for reviewing a PR.
// The diff is truncated to MaxDiffChars and inserted without escaping.
func (b *PromptBuilder) Build(title, description, diff string) (string, error) {
	if description == "" {
		placeholder, err := b.trans.GetMessage("no_description", nil)
		if err != nil {
			return "", fmt.Errorf("failed to build prompt: %w", err)
		}
		description = placeholder
	}

	prompt, err := b.trans.GetMessage("review_prompt", map[string]interface{}{
		"Title": title,
		"Body":  description,
		"Diff":  TruncateDiff(diff, MaxDiffChars),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	return prompt, nil
}
