// Package gitrepo clones a task's target repository and pushes the agent's
// changes back to it, by driving the git CLI as a subprocess.
package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Repo is a cloned, identity-configured git working copy.
type Repo struct {
	dir    string
	branch string
}

// Clone clones repoURL's branch into dir and configures the commit identity
// used for the final commit.
func Clone(ctx context.Context, dir, repoURL, branch, userName, userEmail string) (*Repo, error) {
	if err := runGit(ctx, "", "clone", "--branch", branch, repoURL, dir); err != nil {
		return nil, fmt.Errorf("clone %s: %w", redactURL(repoURL), err)
	}

	repo := &Repo{dir: dir, branch: branch}

	if err := runGit(ctx, dir, "config", "user.name", userName); err != nil {
		return nil, fmt.Errorf("configure user.name: %w", err)
	}
	if err := runGit(ctx, dir, "config", "user.email", userEmail); err != nil {
		return nil, fmt.Errorf("configure user.email: %w", err)
	}

	return repo, nil
}

// CommitAndPush stages every change, commits it, and pushes the branch back
// to origin.
func (r *Repo) CommitAndPush(ctx context.Context) error {
	if err := runGit(ctx, r.dir, "add", "--all"); err != nil {
		return fmt.Errorf("stage changes: %w", err)
	}
	if err := runGit(ctx, r.dir, "commit", "--message", "Commit from minionrt"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	refspec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", r.branch, r.branch)
	if err := runGit(ctx, r.dir, "push", "origin", refspec); err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, out)
	}
	return nil
}

// redactURL strips embedded userinfo (the injected access token) from a
// repo URL before it is ever allowed to end up in a log line or error.
func redactURL(repoURL string) string {
	if idx := strings.Index(repoURL, "@"); idx != -1 {
		if schemeIdx := strings.Index(repoURL, "://"); schemeIdx != -1 && schemeIdx < idx {
			return repoURL[:schemeIdx+3] + "***" + repoURL[idx:]
		}
	}
	return repoURL
}

// InjectToken returns repoURL with the given username/token injected as
// HTTP basic auth userinfo, so git authenticates the clone and push.
func InjectToken(repoURL, username, token string) (string, error) {
	schemeIdx := strings.Index(repoURL, "://")
	if schemeIdx == -1 {
		return "", fmt.Errorf("invalid repo URL %s: missing scheme", redactURL(repoURL))
	}
	scheme := repoURL[:schemeIdx+3]
	rest := repoURL[schemeIdx+3:]
	return fmt.Sprintf("%s%s:%s@%s", scheme, username, token, rest), nil
}
