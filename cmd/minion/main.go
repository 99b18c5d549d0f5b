// Command minion is the entrypoint for a single task run: it fetches the
// next task from the dispatch queue, clones its repository, runs the action
// loop inside a devcontainer sandbox, pushes the result, and reports the
// outcome back.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/minionrt/minion/agent"
	"github.com/minionrt/minion/config"
	"github.com/minionrt/minion/container"
	"github.com/minionrt/minion/dispatch"
	"github.com/minionrt/minion/gitrepo"
	"github.com/minionrt/minion/llm"
)

// gitUsername is the placeholder username injected alongside the dispatch
// token when authenticating the clone and push; most git hosts accept any
// non-empty username alongside a personal access token.
const gitUsername = "x-access-token"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %s\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if err := run(ctx, log); err != nil {
		log.Errorw("task run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.SugaredLogger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dispatchClient := dispatch.NewClient(cfg.APIBaseURL, cfg.APIToken)
	llmClient := llm.NewClient(cfg.APIBaseURL, cfg.APIToken, log)

	task, err := dispatchClient.GetTask(ctx)
	if err != nil {
		return fmt.Errorf("fetch task: %w", err)
	}
	if task.Status != dispatch.TaskStatusRunning {
		return fmt.Errorf("dispatched task is not running (status %q)", task.Status)
	}
	log.Infow("fetched task", "repo", task.GitRepoURL, "branch", task.GitBranch)

	dirName := workspaceDirName(task.GitRepoURL)
	workspaceDir := filepath.Join("workspaces", dirName)
	if err := os.MkdirAll(filepath.Dir(workspaceDir), 0o755); err != nil {
		return fmt.Errorf("create workspaces directory: %w", err)
	}

	authedURL, err := gitrepo.InjectToken(task.GitRepoURL, gitUsername, cfg.APIToken)
	if err != nil {
		return fmt.Errorf("prepare authenticated repo URL: %w", err)
	}

	repo, err := gitrepo.Clone(ctx, workspaceDir, authedURL, task.GitBranch, task.GitUserName, task.GitUserEmail)
	if err != nil {
		return fmt.Errorf("clone repository: %w", err)
	}

	sandbox, err := container.Start(ctx, workspaceDir, dirName, log)
	if err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	defer func() {
		if err := sandbox.Stop(context.Background()); err != nil {
			log.Warnw("failed to stop container", "error", err)
		}
	}()

	outcome, err := agent.Run(ctx, llmClient, sandbox, task)
	if err != nil {
		return fmt.Errorf("run action loop: %w", err)
	}

	if outcome.Complete != nil {
		log.Infow("task completed", "description", outcome.Complete.Description)
		if err := repo.CommitAndPush(ctx); err != nil {
			return fmt.Errorf("commit and push changes: %w", err)
		}
		return dispatchClient.CompleteTask(ctx, *outcome.Complete)
	}

	log.Infow("task failed", "reason", outcome.Failure.Reason, "description", outcome.Failure.Description)
	return dispatchClient.FailTask(ctx, *outcome.Failure)
}

// workspaceDirName derives the container-side workspace folder name from a
// repo URL, the way a manual `git clone` picks a default directory name.
func workspaceDirName(repoURL string) string {
	name := path.Base(repoURL)
	return strings.TrimSuffix(name, ".git")
}
