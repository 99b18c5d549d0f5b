// Package dispatch is the HTTP client for the task queue: fetching the next
// task to work on and reporting back how it went.
package dispatch

// TaskStatus is the lifecycle state of a dispatched task.
type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusRunning  TaskStatus = "running"
	TaskStatusComplete TaskStatus = "complete"
	TaskStatusFailed   TaskStatus = "failed"
)

// Task is the unit of work fetched from the dispatch queue.
type Task struct {
	Description  string     `json:"description"`
	GitRepoURL   string     `json:"git_repo_url"`
	GitBranch    string     `json:"git_branch"`
	GitUserName  string     `json:"git_user_name"`
	GitUserEmail string     `json:"git_user_email"`
	Status       TaskStatus `json:"status"`
}

// TaskFailureReason classifies why a task could not be completed.
type TaskFailureReason string

const (
	TechnicalIssues TaskFailureReason = "technical-issues"
	TaskIssues      TaskFailureReason = "task-issues"
	ProblemSolving  TaskFailureReason = "problem-solving"
)

// TaskComplete is reported back when a task finishes successfully.
type TaskComplete struct {
	Description string `json:"description"`
}

// TaskFailure is reported back when a task could not be finished. Reason is
// empty when the model's own classification didn't match a known category.
type TaskFailure struct {
	Reason      TaskFailureReason `json:"reason,omitempty"`
	Description string            `json:"description"`
}
