package agent

import (
	"testing"

	"github.com/minionrt/minion/llm"
)

func TestCompressedPromptKeepsAllActionsUnderLimit(t *testing.T) {
	h := NewHistory([]llm.PromptItem{llm.SystemItem("intro")})
	for i := 0; i < 3; i++ {
		h.Append([]llm.PromptItem{llm.AssistantItem("did something")}, "summary")
	}

	p := h.CompressedPrompt()
	// prefix (1) + 3 actions * 1 message each = 4, no summaries yet.
	if len(p.Items) != 4 {
		t.Fatalf("len(items) = %d, want 4", len(p.Items))
	}
}

func TestCompressedPromptSummarizesOlderActions(t *testing.T) {
	h := NewHistory(nil)
	for i := 0; i < 8; i++ {
		h.Append([]llm.PromptItem{llm.AssistantItem("msg"), llm.AssistantItem("msg2")}, "summary")
	}

	p := h.CompressedPrompt()
	// 3 older actions summarized into 1 item each, 5 recent actions kept in
	// full (2 items each).
	want := 3 + 5*2
	if len(p.Items) != want {
		t.Fatalf("len(items) = %d, want %d", len(p.Items), want)
	}
}

func TestCompressedPromptBoundIsMonotonic(t *testing.T) {
	h := NewHistory(nil)
	var prevLen int
	for i := 0; i < 20; i++ {
		h.Append([]llm.PromptItem{llm.AssistantItem("msg")}, "summary")
		p := h.CompressedPrompt()
		if i >= maxActionsToKeep && len(p.Items) < prevLen {
			t.Fatalf("action %d: compressed prompt shrank unexpectedly", i)
		}
		// Once past the window, growth per action is bounded to one summary
		// line, not the full per-action message count.
		prevLen = len(p.Items)
	}
}

func TestAppendAssignsSequentialNumbers(t *testing.T) {
	h := NewHistory(nil)
	h.Append(nil, "first")
	h.Append(nil, "second")
	actions := h.Actions()
	if actions[0].Number != 0 || actions[1].Number != 1 {
		t.Fatalf("unexpected action numbers: %+v", actions)
	}
}
