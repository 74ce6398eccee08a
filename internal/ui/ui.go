// Package ui provides the interactive terminal prompts workbridge
// uses before destructive or bulk operations.
package ui

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

// previewPageSize is the number of items shown at once in the
// migration preview.
const previewPageSize = 15

// Prompter wraps the interactive prompts so commands can be tested
// with a stub.
type Prompter struct{}

// NewPrompter creates a new prompter.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// ConfirmMigration asks the user to confirm loading count items onto
// the named target platform. Defaults to no.
func (p *Prompter) ConfirmMigration(count int, target string) (bool, error) {
	var confirmed bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Create %d items on %s?", count, target),
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, fmt.Errorf("failed to get confirmation: %w", err)
	}
	return confirmed, nil
}

// PreviewItem is one migration candidate shown in the preview prompt.
type PreviewItem struct {
	SourceID string
	Title    string
	Type     string
}

// SelectItems shows the migration candidates and lets the user keep a
// subset. An empty input slice returns an empty selection without
// prompting.
func (p *Prompter) SelectItems(items []PreviewItem) ([]int, error) {
	if len(items) == 0 {
		return nil, nil
	}

	options := make([]string, len(items))
	for i, item := range items {
		options[i] = fmt.Sprintf("[%s] %s (%s)", item.SourceID, item.Title, item.Type)
	}

	var selected []int
	prompt := &survey.MultiSelect{
		Message:  "Choose items to migrate:",
		Options:  options,
		PageSize: previewPageSize,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, fmt.Errorf("failed to get item selection: %w", err)
	}
	return selected, nil
}
