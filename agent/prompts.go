package agent

// Model selection policy: smartModel drives anything that requires real
// reasoning (discussing a plan, writing code, summarizing the outcome);
// basicModel drives the mechanical bookkeeping turns (picking a filepath,
// naming an action) where a cheaper, faster model suffices.
const (
	smartModel = "o1-mini"
	basicModel = "gpt-4o-mini"
)

const introPart1 = `You are an autonomous agent that solves coding tasks.
You keep your explanations as concise as possible.
You are connected to a Linux-based development environment. You are in the project directory.
Your current task is as follows:`

const introPart2 = `In order to complete the task, the system will guide you through a series of actions.
In each action, you will be able to interact with the environment using the following actions:

* ` + "`bash`" + `: Execute bash code
* ` + "`read-file`" + `: Read the contents of a file
* ` + "`edit-file`" + `: Read, and optionally replace the contents of a file
* ` + "`end-task`" + `: End your task because it is completed, or because there is an insurmountable issue preventing you from completing it.

You will be instructed when to choose an action.
You can use the ` + "`bash`" + ` action to install and execute arbitrary command line tools that are helpful for your task.
You can use ` + "`ls`" + ` or ` + "`tree`" + ` to explore the file system, or ` + "`curl`" + ` to download files.
You do not need to use ` + "`sudo`" + ` as you are already running as a privileged user.
`

const discussFirst = `Plan the first step of your approach without writing any code, yet.
Let's think step by step.`

const discussBash = `Discuss what the output means.
Then, plan what you want to do next without writing any code, yet.
Let's think step by step.`

const discussReadFile = `Discuss the file content.
Then, plan what you want to do next without writing any code, yet.
Let's think step by step.`

const discussEditFile = `Discuss your edits.
Then, plan what you want to do next without writing any code, yet.
Let's think step by step.`

const discussAction = "To realize the first step of your plan, you must now choose one of the following actions:\n\n" +
	"* `bash`: Execute bash code\n" +
	"* `read-file`: Read the contents of a file\n" +
	"* `edit-file`: Read, and optionally replace the contents of a file\n" +
	"* `end-task`: End your task because it is completed, or because there is an insurmountable issue preventing you from completing it.\n\n" +
	"To write code, you must use the `edit-file` action.\n" +
	"Discuss which action you choose. Let's think step by step.\n"

const selectAction = "Give the name of the action you chose above.\n" +
	"No prose, your message must consist solely of the action name.\n" +
	"For instance, if you chose the bash action, you would write:\n\n" +
	"bash\n"

const actionBash = "Provide the bash script you want to run.\n" +
	"No prose. Your message should only consist of bash code:\n"

const actionEditFilepath = "Provide the path of the file you want to edit.\n" +
	"No prose. Your message should only consist of the filepath.\n" +
	"For instance, to read `foo/bar/example.txt`, write:\n\n" +
	"foo/bar/example.txt\n"

const actionEditDiscuss = "Discuss whether you want to edit the file and if so, which changes you want to make."

const actionEditReplace = "Provide the file content with your edits applied.\n" +
	"If you do not want to edit the file, restate the current file contents.\n" +
	"No prose. Your message must list the whole updated file, because the file will be overwritten with your new content:\n"

const actionEditCreate = "Provide the new file contents.\n" +
	"No prose. Do not wrap the file contents in markdown code fences that are not part of the file contents themselves.\n" +
	"Your message must only consist of the new file contents:\n"

const actionEdited = "The edited file has been saved."

const actionReadFilepath = "Provide the path of the file you want to read.\n" +
	"No prose. Your message must only consist of the filepath.\n" +
	"For instance, to read `foo/bar/example.txt`, write:\n\n" +
	"foo/bar/example.txt\n"

const actionEndTaskDiscuss = "You have decided to end the task.\n" +
	"Discuss whether you have completed the task or if there is an issue preventing you from completing it.\n" +
	"Afterwards, you will be able to select one of the following exit statuses:\n\n" +
	"* `complete`: The task is completed.\n" +
	"* `failure`: The task is failed.\n"

const actionEndTaskSelect = "Give the name of the exit status you chose above.\n" +
	"No prose, your message must consist solely of the action name.\n" +
	"For instance, if you chose to mark the task as complete, you would write:\n\n" +
	"complete\n"

const actionCompleteTaskDescription = "Give a final summary of the task which will be displayed to the user.\n\n" +
	"The summary should discuss the task, the steps you took to complete it, and the final result. Be concise.\n"

const actionFailTaskDescription = "Give a final summary on why the task failed. This summary will be displayed to the user.\n\n" +
	"The summary should discuss the task, the steps you took, and the reason for the failure. Finally, you can suggest possible solutions. Be concise.\n"

const actionFailTaskReasonDiscuss = "Please categorize the reason for task failure.\n" +
	"You will be able to select one of the following categories:\n\n" +
	"* `technical-issues`: You failed to complete the task due to technical problems unrelated to the task itself\n" +
	"* `task-issues`: You failed to complete the task due to a problem with the task itself, e.g. because the task was unclear or impossible to complete\n" +
	"* `problem-solving`: There were no fundamental technical issues and the task was valid, but you still failed to complete the task because you did not succeed at task-specific problem-solving.\n\n" +
	"Discuss which category you choose. Let's think step by step.\n"

const actionFailTaskReasonSelect = "Give the name of the reason category you chose above.\n" +
	"No prose, your message must consist solely of the reason category name.\n\n" +
	"For instance, if you chose the technical-issues category, you would write:\n\n" +
	"technical-issues\n"
