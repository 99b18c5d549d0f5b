// Package llm drives an OpenAI-compatible chat completions API: it models a
// prompt as a sequence of role-tagged items, renders that sequence according
// to the quirks of the target model, and retries transient failures with
// bounded exponential backoff.
package llm

// reasoningModels render System items as User items and omit temperature,
// because these models reject a system role and a temperature parameter.
var reasoningModels = map[string]bool{
	"o1-mini":    true,
	"o1-preview": true,
}

func isReasoningModel(model string) bool {
	return reasoningModels[model]
}

// PromptItemKind distinguishes the three kinds of item a Prompt can hold.
type PromptItemKind int

const (
	PromptItemUser PromptItemKind = iota
	PromptItemSystem
	PromptItemAssistant
)

// PromptItem is one entry in a Prompt. Kind determines which of Content/Text
// is meaningful: User items carry Content, System and Assistant items carry
// Text.
type PromptItem struct {
	Kind    PromptItemKind
	Content Content
	Text    string
}

// UserItem builds a user-authored prompt item out of the given content.
func UserItem(content Content) PromptItem {
	return PromptItem{Kind: PromptItemUser, Content: content}
}

// SystemItem builds a system-authored instruction. Depending on the target
// model, this may be rendered under the "system" or "user" role.
func SystemItem(text string) PromptItem {
	return PromptItem{Kind: PromptItemSystem, Text: text}
}

// AssistantItem builds a recorded assistant completion.
func AssistantItem(text string) PromptItem {
	return PromptItem{Kind: PromptItemAssistant, Text: text}
}

// Prompt is the full message sequence sent to the model.
type Prompt struct {
	Items []PromptItem
}

// Clone returns a Prompt with its own backing slice, so appending to the
// clone never mutates the original.
func (p Prompt) Clone() Prompt {
	items := make([]PromptItem, len(p.Items))
	copy(items, p.Items)
	return Prompt{Items: items}
}

// ContentItemKind distinguishes the kinds of content a user message can
// carry. Only text is produced by the action loop today; image support is
// carried forward from the original implementation for forward compatibility
// with future multimodal actions.
type ContentItemKind int

const (
	ContentItemText ContentItemKind = iota
	ContentItemImage
)

// ContentItem is one part of a user message's content.
type ContentItem struct {
	Kind            ContentItemKind
	Text            string
	ImageBase64WebP string
}

// Content is the body of a user-authored prompt item: an ordered list of
// content parts.
type Content struct {
	Items []ContentItem
}

// TextContent wraps a plain string as single-part text content.
func TextContent(text string) Content {
	return Content{Items: []ContentItem{{Kind: ContentItemText, Text: text}}}
}
