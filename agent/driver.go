package agent

import (
	"context"
	"fmt"

	"github.com/minionrt/minion/dispatch"
	"github.com/minionrt/minion/llm"
)

// TaskOutcome is the terminal result of driving a task to completion.
type TaskOutcome = Outcome

// Run builds the task's fixed prompt prefix and drives the action loop
// against c until the model ends the task. task.Status must be
// dispatch.TaskStatusRunning; any other status is a caller error, since a
// pending or already-finished task has no business being run.
func Run(ctx context.Context, llmClient Prompter, c Sandbox, task *dispatch.Task) (TaskOutcome, error) {
	if task.Status != dispatch.TaskStatusRunning {
		return TaskOutcome{}, fmt.Errorf("task is not running (status %q)", task.Status)
	}

	prefix := []llm.PromptItem{
		llm.SystemItem(introPart1),
		llm.UserItem(llm.TextContent(task.Description)),
		llm.SystemItem(introPart2),
	}

	history := NewHistory(prefix)
	resources := NewResources()
	loop := NewLoop(llmClient, c, history, resources)

	outcome, err := loop.Run(ctx)
	if err != nil {
		return TaskOutcome{}, fmt.Errorf("run action loop: %w", err)
	}
	return outcome, nil
}
