package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/minionrt/minion/container"
	"github.com/minionrt/minion/dispatch"
	"github.com/minionrt/minion/llm"
	"github.com/minionrt/minion/markdown"
)

// Prompter is the subset of *llm.Client the action loop depends on, so the
// loop can be driven against a fake in tests without a real HTTP endpoint.
type Prompter interface {
	Prompt(ctx context.Context, model string, prompt llm.Prompt) (string, error)
}

// Sandbox is the subset of *container.Container the action loop depends on,
// so the loop can be driven against a fake in tests without a real Docker
// daemon.
type Sandbox interface {
	RunScript(ctx context.Context, code string) (*container.Output, error)
	ReadFile(ctx context.Context, filePath string) (string, error)
	WriteFile(ctx context.Context, filePath, content string) error
}

// actionKind names one of the four actions the model can choose between on
// any given turn.
type actionKind string

const (
	actionKindBash     actionKind = "bash"
	actionKindReadFile actionKind = "read-file"
	actionKindEditFile actionKind = "edit-file"
	actionKindEndTask  actionKind = "end-task"
)

// Outcome is the terminal result of a task loop: exactly one of Complete or
// Failure is set.
type Outcome struct {
	Complete *dispatch.TaskComplete
	Failure  *dispatch.TaskFailure
}

// Loop drives the model through the action loop against a single container,
// recording every exchange in history and every touched file in resources.
type Loop struct {
	llm       Prompter
	container Sandbox
	history   *History
	resources *Resources
}

// NewLoop builds a Loop over an already-started container and a History
// seeded with the task's introduction prefix.
func NewLoop(llmClient Prompter, c Sandbox, history *History, resources *Resources) *Loop {
	return &Loop{llm: llmClient, container: c, history: history, resources: resources}
}

// Run drives the action loop until the model ends the task, returning the
// outcome it chose.
func (l *Loop) Run(ctx context.Context) (Outcome, error) {
	for {
		outcome, done, err := l.singleAction(ctx)
		if err != nil {
			return Outcome{}, err
		}
		if done {
			return outcome, nil
		}
	}
}

// singleAction runs one full turn, framed by a BEGIN ACTION/END ACTION
// marker pair so the model can track turn boundaries: discuss the first
// step (action 0 only), pick an action, carry it out, discuss the result,
// then summarize the whole turn into history.
func (l *Loop) singleAction(ctx context.Context) (Outcome, bool, error) {
	actionNumber := len(l.history.Actions())
	items := []llm.PromptItem{llm.SystemItem(fmt.Sprintf("BEGIN ACTION %d", actionNumber))}

	if actionNumber == 0 {
		if _, err := l.ask(ctx, smartModel, &items, llm.SystemItem(discussFirst)); err != nil {
			return Outcome{}, false, err
		}
	}

	kind, err := l.selectAction(ctx, &items)
	if err != nil {
		return Outcome{}, false, err
	}

	if kind == actionKindEndTask {
		outcome, err := l.actionEndTask(ctx, &items)
		if err != nil {
			return Outcome{}, false, err
		}
		return outcome, true, nil
	}

	var discuss string
	switch kind {
	case actionKindBash:
		if err := l.actionBash(ctx, &items); err != nil {
			return Outcome{}, false, err
		}
		discuss = discussBash
	case actionKindReadFile:
		if err := l.actionReadFile(ctx, &items); err != nil {
			return Outcome{}, false, err
		}
		discuss = discussReadFile
	case actionKindEditFile:
		if err := l.actionEditFile(ctx, &items); err != nil {
			return Outcome{}, false, err
		}
		discuss = discussEditFile
	default:
		return Outcome{}, false, fmt.Errorf("model chose unrecognized action %q", kind)
	}

	if _, err := l.ask(ctx, smartModel, &items, llm.SystemItem(discuss)); err != nil {
		return Outcome{}, false, err
	}

	items = append(items, llm.SystemItem(fmt.Sprintf("END ACTION %d", actionNumber)))

	l.finishAction(ctx, items, actionNumber)
	return Outcome{}, false, nil
}

// selectAction asks the model to discuss, then name, the action it wants to
// take. The discussion is recorded in items; the bare action name is parsed
// and discarded, never recorded as an assistant turn.
func (l *Loop) selectAction(ctx context.Context, items *[]llm.PromptItem) (actionKind, error) {
	if _, err := l.ask(ctx, basicModel, items, llm.SystemItem(discussAction)); err != nil {
		return "", err
	}

	*items = append(*items, llm.SystemItem(selectAction))
	prompt := l.history.CompressedPrompt()
	prompt.Items = append(prompt.Items, (*items)...)
	text, err := l.llm.Prompt(ctx, basicModel, prompt)
	if err != nil {
		return "", fmt.Errorf("prompt model: %w", err)
	}
	return actionKind(strings.ToLower(strings.TrimSpace(text))), nil
}

// ask appends query to items, sends the history's compressed prompt plus the
// current action's items so far to model, and appends the response as an
// assistant item.
func (l *Loop) ask(ctx context.Context, model string, items *[]llm.PromptItem, query llm.PromptItem) (string, error) {
	*items = append(*items, query)

	prompt := l.history.CompressedPrompt()
	prompt.Items = append(prompt.Items, (*items)...)

	text, err := l.llm.Prompt(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("prompt model: %w", err)
	}

	*items = append(*items, llm.AssistantItem(text))
	return text, nil
}

// finishAction summarizes the action with the basic model and records it in
// history. A failure to summarize falls back to the empty summary rather
// than aborting the whole task over a cosmetic step.
func (l *Loop) finishAction(ctx context.Context, items []llm.PromptItem, actionNumber int) {
	summary, err := l.summarizeAction(ctx, items, actionNumber)
	if err != nil {
		summary = ""
	}
	l.history.Append(items, summary)
}

func (l *Loop) summarizeAction(ctx context.Context, items []llm.PromptItem, actionNumber int) (string, error) {
	summarizeItems := append(append([]llm.PromptItem{}, items...),
		llm.SystemItem(fmt.Sprintf("Summarize what you have done in action %d.", actionNumber)))
	prompt := l.history.CompressedPrompt()
	prompt.Items = append(prompt.Items, summarizeItems...)
	return l.llm.Prompt(ctx, basicModel, prompt)
}

// actionBash runs model-authored bash code in the container and appends its
// captured output to items.
func (l *Loop) actionBash(ctx context.Context, items *[]llm.PromptItem) error {
	code, err := l.ask(ctx, smartModel, items, llm.SystemItem(actionBash))
	if err != nil {
		return err
	}
	code = markdown.StripWrappingCodeFences(code)

	output, err := l.container.RunScript(ctx, code)
	if err != nil {
		return fmt.Errorf("run bash action: %w", err)
	}

	msg := fmt.Sprintf("Stdout: \n```\n%s\n```\nStderr: \n```\n%s\n```\nExit status: %d\n",
		output.Stdout, output.Stderr, output.ExitCode)
	*items = append(*items, llm.SystemItem(msg))
	return nil
}

// actionReadFile reads a model-chosen file out of the container and
// registers it in the resources ledger on success.
func (l *Loop) actionReadFile(ctx context.Context, items *[]llm.PromptItem) error {
	pathText, err := l.ask(ctx, basicModel, items, llm.SystemItem(actionReadFilepath))
	if err != nil {
		return err
	}
	filePath := parseFilepath(pathText)

	content, readErr := l.container.ReadFile(ctx, filePath)
	switch {
	case readErr == nil:
		l.resources.AddFile(filePath)
		*items = append(*items,
			llm.SystemItem(fmt.Sprintf("The content of `%s` is:", filePath)),
			llm.SystemItem(content),
		)
	case errors.Is(readErr, container.ErrNotFound):
		*items = append(*items, llm.SystemItem("The file does not exist."))
	default:
		*items = append(*items, llm.SystemItem(fmt.Sprintf("An error occured while reading the file: %v", readErr)))
	}
	return nil
}

// actionEditFile reads a model-chosen file (if it exists), asks the model to
// discuss and then produce the new content, and writes it back. A read
// error other than NotFound stops the action without touching the file, so
// a transient infrastructure failure is never mistaken for "file doesn't
// exist" and clobbered.
func (l *Loop) actionEditFile(ctx context.Context, items *[]llm.PromptItem) error {
	pathText, err := l.ask(ctx, basicModel, items, llm.SystemItem(actionEditFilepath))
	if err != nil {
		return err
	}
	filePath := parseFilepath(pathText)

	existing, readErr := l.container.ReadFile(ctx, filePath)
	switch {
	case readErr == nil:
		l.resources.AddFile(filePath)
		*items = append(*items,
			llm.SystemItem(fmt.Sprintf("The content of `%s` is:", filePath)),
			llm.SystemItem(existing),
		)
		if _, err := l.ask(ctx, smartModel, items, llm.SystemItem(actionEditDiscuss)); err != nil {
			return err
		}
		newContent, err := l.ask(ctx, smartModel, items, llm.SystemItem(actionEditReplace))
		if err != nil {
			return err
		}
		newContent = markdown.StripWrappingCodeFences(newContent)
		if err := l.container.WriteFile(ctx, filePath, newContent); err != nil {
			return fmt.Errorf("write edited file: %w", err)
		}
		*items = append(*items, llm.SystemItem(actionEdited))
		return nil

	case errors.Is(readErr, container.ErrNotFound):
		*items = append(*items, llm.SystemItem("The file does not exist. It will be created."))
		newContent, err := l.ask(ctx, smartModel, items, llm.SystemItem(actionEditCreate))
		if err != nil {
			return err
		}
		newContent = markdown.StripWrappingCodeFences(newContent)
		l.resources.AddFile(filePath)
		if err := l.container.WriteFile(ctx, filePath, newContent); err != nil {
			return fmt.Errorf("write new file: %w", err)
		}
		*items = append(*items, llm.SystemItem(actionEdited))
		return nil

	default:
		*items = append(*items, llm.SystemItem(fmt.Sprintf("An error occured while reading the file: %v", readErr)))
		return nil
	}
}

// actionEndTask asks the model to classify and describe the task's outcome.
func (l *Loop) actionEndTask(ctx context.Context, items *[]llm.PromptItem) (Outcome, error) {
	if _, err := l.ask(ctx, smartModel, items, llm.SystemItem(actionEndTaskDiscuss)); err != nil {
		return Outcome{}, err
	}
	statusText, err := l.ask(ctx, basicModel, items, llm.SystemItem(actionEndTaskSelect))
	if err != nil {
		return Outcome{}, err
	}
	status := strings.ToLower(strings.TrimSpace(statusText))

	switch status {
	case "complete":
		description, err := l.ask(ctx, smartModel, items, llm.SystemItem(actionCompleteTaskDescription))
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Complete: &dispatch.TaskComplete{Description: strings.TrimSpace(description)}}, nil
	case "failure":
		description, err := l.ask(ctx, smartModel, items, llm.SystemItem(actionFailTaskDescription))
		if err != nil {
			return Outcome{}, err
		}
		if _, err := l.ask(ctx, smartModel, items, llm.SystemItem(actionFailTaskReasonDiscuss)); err != nil {
			return Outcome{}, err
		}
		reasonText, err := l.ask(ctx, basicModel, items, llm.SystemItem(actionFailTaskReasonSelect))
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Failure: &dispatch.TaskFailure{
			Reason:      parseFailureReason(reasonText),
			Description: strings.TrimSpace(description),
		}}, nil
	default:
		return Outcome{}, fmt.Errorf("model chose unrecognized exit status %q", statusText)
	}
}

// parseFilepath trims the surrounding whitespace, quotes, and backticks a
// model sometimes wraps a bare filepath answer in.
func parseFilepath(text string) string {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.Trim(trimmed, "`'\"")
	return strings.TrimSpace(trimmed)
}

// parseFailureReason maps the model's free-text category choice onto a
// known TaskFailureReason. An unrecognized choice yields the zero value,
// mirroring how the original implementation leaves the reason unset rather
// than guessing.
func parseFailureReason(text string) dispatch.TaskFailureReason {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case string(dispatch.TechnicalIssues):
		return dispatch.TechnicalIssues
	case string(dispatch.TaskIssues):
		return dispatch.TaskIssues
	case string(dispatch.ProblemSolving):
		return dispatch.ProblemSolving
	default:
		return ""
	}
}
