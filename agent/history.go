package agent

import (
	"fmt"

	"github.com/minionrt/minion/llm"
)

// maxActionsToKeep is the number of most recent actions kept in full in the
// compressed prompt; everything older is replaced by its one-line summary.
const maxActionsToKeep = 5

// Action is one completed iteration of the action loop: every prompt item
// exchanged during it, plus a short summary used once it ages out of the
// full-detail window.
type Action struct {
	Number   int
	Messages []llm.PromptItem
	Summary  string
}

// History holds the fixed prefix every prompt starts with, plus the
// sequence of actions taken so far, and renders a bounded-memory prompt out
// of them.
type History struct {
	prefix  []llm.PromptItem
	actions []Action
}

// NewHistory starts a History with the given fixed prefix (the task
// introduction and description).
func NewHistory(prefix []llm.PromptItem) *History {
	return &History{prefix: prefix}
}

// Actions returns the actions recorded so far.
func (h *History) Actions() []Action {
	return h.actions
}

// CompressedPrompt renders the prefix, followed by one-line summaries for
// all but the most recent maxActionsToKeep actions, followed by the full
// message sequence of those recent actions.
func (h *History) CompressedPrompt() llm.Prompt {
	total := len(h.actions)
	skip := total - maxActionsToKeep
	if skip < 0 {
		skip = 0
	}

	items := make([]llm.PromptItem, 0, len(h.prefix))
	items = append(items, h.prefix...)

	for _, action := range h.actions[:skip] {
		items = append(items, llm.SystemItem(fmt.Sprintf("Summary for action %d: %s", action.Number, action.Summary)))
	}
	for _, action := range h.actions[skip:] {
		items = append(items, action.Messages...)
	}

	return llm.Prompt{Items: items}
}

// Append records a completed action.
func (h *History) Append(messages []llm.PromptItem, summary string) {
	h.actions = append(h.actions, Action{Number: len(h.actions), Messages: messages, Summary: summary})
}
