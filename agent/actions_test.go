package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/minionrt/minion/container"
	"github.com/minionrt/minion/dispatch"
	"github.com/minionrt/minion/llm"
)

// fakePrompter returns its scripted responses in order, ignoring the actual
// prompt content, so tests can drive a known path through the action loop.
type fakePrompter struct {
	responses []string
	calls     int
}

func (f *fakePrompter) Prompt(ctx context.Context, model string, prompt llm.Prompt) (string, error) {
	if f.calls >= len(f.responses) {
		return "", errors.New("fakePrompter: ran out of scripted responses")
	}
	r := f.responses[f.calls]
	f.calls++
	return r, nil
}

// fakeSandbox is an in-memory stand-in for *container.Container.
type fakeSandbox struct {
	files      map[string]string
	lastScript string
	output     *container.Output
	readErr    error
}

func newFakeSandbox() *fakeSandbox {
	return &fakeSandbox{files: make(map[string]string), output: &container.Output{ExitCode: 0}}
}

func (f *fakeSandbox) RunScript(ctx context.Context, code string) (*container.Output, error) {
	f.lastScript = code
	return f.output, nil
}

func (f *fakeSandbox) ReadFile(ctx context.Context, filePath string) (string, error) {
	if f.readErr != nil {
		return "", f.readErr
	}
	content, ok := f.files[filePath]
	if !ok {
		return "", container.ErrNotFound
	}
	return content, nil
}

func (f *fakeSandbox) WriteFile(ctx context.Context, filePath, content string) error {
	f.files[filePath] = content
	return nil
}

func TestRunCompletesTaskImmediately(t *testing.T) {
	prompter := &fakePrompter{responses: []string{
		"Nothing to do, the task already looks satisfied.", // discuss first
		"I'll choose end-task.",                             // discuss action
		"end-task",                                          // select action
		"The task is already done.",                         // end task discuss
		"complete",                                          // end task select
		"Nothing needed to change.",                         // complete description
	}}
	sandbox := newFakeSandbox()
	task := &dispatch.Task{Description: "Do nothing.", Status: dispatch.TaskStatusRunning}

	outcome, err := Run(context.Background(), prompter, sandbox, task)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Complete == nil {
		t.Fatalf("expected Complete outcome, got %+v", outcome)
	}
	if outcome.Complete.Description != "Nothing needed to change." {
		t.Errorf("unexpected description: %q", outcome.Complete.Description)
	}
}

func TestRunExecutesBashThenFails(t *testing.T) {
	prompter := &fakePrompter{responses: []string{
		"I'll run a command to look around.", // action 0: discuss first
		"I'll choose bash.",                  // action 0: discuss action
		"bash",                               // action 0: select action
		"```\nls -la\n```",                   // action 0: bash code (fenced, should be stripped)
		"Nothing useful there, I'm stuck.",   // action 0: discuss bash
		"Ran ls, found nothing useful.",      // action 0: summarize
		"I'll end the task.",                 // action 1: discuss action
		"end-task",                           // action 1: select action
		"I can't complete this.",             // action 1: end task discuss
		"failure",                            // action 1: end task select
		"Could not find a way forward.",      // action 1: fail description
		"This seems like a problem with the task.", // action 1: fail reason discuss
		"task-issues",                        // action 1: fail reason select
	}}
	sandbox := newFakeSandbox()
	task := &dispatch.Task{Description: "Investigate.", Status: dispatch.TaskStatusRunning}

	outcome, err := Run(context.Background(), prompter, sandbox, task)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Failure == nil {
		t.Fatalf("expected Failure outcome, got %+v", outcome)
	}
	if outcome.Failure.Reason != dispatch.TaskIssues {
		t.Errorf("unexpected reason: %q", outcome.Failure.Reason)
	}
	if sandbox.lastScript != "ls -la\n" {
		t.Errorf("expected stripped code fences, got %q", sandbox.lastScript)
	}
}

func TestRunRejectsNonRunningTask(t *testing.T) {
	task := &dispatch.Task{Description: "x", Status: dispatch.TaskStatusPending}
	if _, err := Run(context.Background(), &fakePrompter{}, newFakeSandbox(), task); err == nil {
		t.Fatal("expected error for non-running task")
	}
}

func TestParseFilepathStripsQuotingAndWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  foo/bar.txt  ", "foo/bar.txt"},
		{"`foo/bar.txt`", "foo/bar.txt"},
		{"\"foo/bar.txt\"", "foo/bar.txt"},
	}
	for _, tt := range tests {
		if got := parseFilepath(tt.in); got != tt.want {
			t.Errorf("parseFilepath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestActionEditFileStopsOnTransientReadErrorWithoutCreating(t *testing.T) {
	prompter := &fakePrompter{responses: []string{"/tmp/target.txt"}}
	sandbox := newFakeSandbox()
	sandbox.readErr = errors.New("docker: timeout")
	loop := NewLoop(prompter, sandbox, NewHistory(nil), NewResources())

	var items []llm.PromptItem
	if err := loop.actionEditFile(context.Background(), &items); err != nil {
		t.Fatalf("actionEditFile: %v", err)
	}
	if _, wrote := sandbox.files["/tmp/target.txt"]; wrote {
		t.Fatal("expected no file write on a transient read error")
	}
	if len(loop.resources.OpenFiles()) != 0 {
		t.Fatal("expected no resource recorded on a transient read error")
	}
}

func TestActionReadFileDoesNotRecordResourceOnNotFound(t *testing.T) {
	prompter := &fakePrompter{responses: []string{"missing.txt"}}
	sandbox := newFakeSandbox()
	loop := NewLoop(prompter, sandbox, NewHistory(nil), NewResources())

	var items []llm.PromptItem
	if err := loop.actionReadFile(context.Background(), &items); err != nil {
		t.Fatalf("actionReadFile: %v", err)
	}
	if got := loop.resources.OpenFiles(); len(got) != 0 {
		t.Fatalf("expected no resource recorded for a file that was not found, got %v", got)
	}
}

func TestActionReadFileDoesNotRecordResourceOnTransientError(t *testing.T) {
	prompter := &fakePrompter{responses: []string{"broken.txt"}}
	sandbox := newFakeSandbox()
	sandbox.readErr = errors.New("docker: timeout")
	loop := NewLoop(prompter, sandbox, NewHistory(nil), NewResources())

	var items []llm.PromptItem
	if err := loop.actionReadFile(context.Background(), &items); err != nil {
		t.Fatalf("actionReadFile: %v", err)
	}
	if got := loop.resources.OpenFiles(); len(got) != 0 {
		t.Fatalf("expected no resource recorded on a transient error, got %v", got)
	}
}

func TestParseFailureReasonUnknownYieldsZeroValue(t *testing.T) {
	if got := parseFailureReason("something-else"); got != "" {
		t.Errorf("expected zero value for unrecognized reason, got %q", got)
	}
	if got := parseFailureReason("technical-issues"); got != dispatch.TechnicalIssues {
		t.Errorf("expected TechnicalIssues, got %q", got)
	}
}
