// Package container drives a single devcontainer-described Docker container
// as the sandbox a task runs in: starting it, running scripts inside it, and
// moving files in and out of it over the Docker API's tar-stream transfer.
package container

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	dockercontainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"

	"github.com/minionrt/minion/devcontainer"
)

const containerName = "minion-devcontainer"

// Output is the result of running a script inside the container.
type Output struct {
	ExitCode int64
	Stdout   string
	Stderr   string
}

// ErrNotFound is returned by ReadFile when the requested path does not
// exist in the container.
var ErrNotFound = errors.New("file not found in container")

// Container is a running devcontainer-described Docker container bound to a
// host workspace directory.
type Container struct {
	docker             *client.Client
	id                 string
	workspaceContainer string
	log                *zap.SugaredLogger
}

// Start loads the devcontainer descriptor under workspaceDirHost, pulls its
// image, and starts a long-lived container with the host workspace bind
// mounted at /workspaces/<workspaceDirName>.
func Start(ctx context.Context, workspaceDirHost, workspaceDirName string, log *zap.SugaredLogger) (*Container, error) {
	workspaceContainer := path.Join("/workspaces", workspaceDirName)

	dc, err := devcontainer.Load(workspaceDirHost)
	if err != nil {
		return nil, fmt.Errorf("load devcontainer descriptor: %w", err)
	}

	docker, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("connect to docker: %w", err)
	}

	if log != nil {
		log.Infow("pulling devcontainer image", "image", dc.Image)
	}
	pullReader, err := docker.ImagePull(ctx, dc.Image, image.PullOptions{})
	if err != nil {
		return nil, fmt.Errorf("pull image %s: %w", dc.Image, err)
	}
	if _, err := io.Copy(io.Discard, pullReader); err != nil {
		pullReader.Close()
		return nil, fmt.Errorf("pull image %s: %w", dc.Image, err)
	}
	pullReader.Close()

	hostAbs, err := absPath(workspaceDirHost)
	if err != nil {
		return nil, err
	}

	cfg := &dockercontainer.Config{
		Image: dc.Image,
		Tty:   true,
		Cmd:   []string{"tail", "-f", "/dev/null"},
	}
	hostCfg := &dockercontainer.HostConfig{
		Binds: []string{fmt.Sprintf("%s:%s", hostAbs, workspaceContainer)},
	}

	resp, err := docker.ContainerCreate(ctx, cfg, hostCfg, nil, nil, containerName)
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	if err := docker.ContainerStart(ctx, resp.ID, dockercontainer.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	return &Container{docker: docker, id: resp.ID, workspaceContainer: workspaceContainer, log: log}, nil
}

// Stop stops and removes the container.
func (c *Container) Stop(ctx context.Context) error {
	if err := c.docker.ContainerStop(ctx, c.id, dockercontainer.StopOptions{}); err != nil {
		if c.log != nil {
			c.log.Warnw("failed to stop container", "container", c.id, "error", err)
		}
	}
	return c.docker.ContainerRemove(ctx, c.id, dockercontainer.RemoveOptions{Force: true})
}

// WorkspaceDirContainer returns the workspace path as seen from inside the
// container.
func (c *Container) WorkspaceDirContainer() string {
	return c.workspaceContainer
}

// RunScript uploads code as a shell script into the container and runs it,
// returning its captured stdout, stderr, and exit status.
func (c *Container) RunScript(ctx context.Context, code string) (*Output, error) {
	scriptName := fmt.Sprintf("minion-script-%s.sh", randomHex(16))
	scriptPathContainer := path.Join("/tmp", scriptName)

	if err := c.uploadFile(ctx, "/", scriptPathContainer, code, 0o755); err != nil {
		return nil, fmt.Errorf("upload script: %w", err)
	}

	execResp, err := c.docker.ContainerExecCreate(ctx, c.id, dockercontainer.ExecOptions{
		Cmd:          []string{"/bin/bash", scriptPathContainer},
		WorkingDir:   c.workspaceContainer,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create exec: %w", err)
	}

	attach, err := c.docker.ContainerExecAttach(ctx, execResp.ID, dockercontainer.ExecAttachOptions{})
	if err != nil {
		return nil, fmt.Errorf("attach exec: %w", err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return nil, fmt.Errorf("read exec output: %w", err)
	}

	inspect, err := c.docker.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return nil, fmt.Errorf("inspect exec: %w", err)
	}

	return &Output{
		ExitCode: int64(inspect.ExitCode),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// ReadFile reads filePath from the container, resolving relative paths
// against the workspace directory. It returns ErrNotFound if the path does
// not exist.
func (c *Container) ReadFile(ctx context.Context, filePath string) (string, error) {
	resolved := c.resolvePath(filePath)

	reader, _, err := c.docker.CopyFromContainer(ctx, c.id, resolved)
	if err != nil {
		if client.IsErrNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("copy from container: %w", err)
	}
	defer reader.Close()

	tr := tar.NewReader(reader)
	if _, err := tr.Next(); err != nil {
		return "", ErrNotFound
	}
	content, err := io.ReadAll(tr)
	if err != nil {
		return "", fmt.Errorf("read file contents: %w", err)
	}
	return string(content), nil
}

// WriteFile writes content to filePath in the container, resolving relative
// paths against the workspace directory and creating any missing parent
// directories.
func (c *Container) WriteFile(ctx context.Context, filePath, content string) error {
	resolved := c.resolvePath(filePath)
	return c.uploadFile(ctx, "/", resolved, content, 0o644)
}

// resolvePath resolves path against the container workspace directory
// unless it is already absolute.
func (c *Container) resolvePath(p string) string {
	if path.IsAbs(p) {
		return p
	}
	return path.Join(c.workspaceContainer, p)
}

// uploadFile builds a tar archive containing destPath (and directory
// entries for each of its parents, root to leaf) and uploads it to the
// container rooted at uploadRoot.
func (c *Container) uploadFile(ctx context.Context, uploadRoot, destPath, content string, mode int64) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	trimmed := strings.TrimPrefix(destPath, "/")
	dirs := parentDirsRootToLeaf(trimmed)
	for i := range dirs {
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeDir,
			Name:     dirs[i] + "/",
			Mode:     0o755,
		}); err != nil {
			return fmt.Errorf("write dir header %s: %w", dirs[i], err)
		}
	}

	if err := tw.WriteHeader(&tar.Header{
		Name: trimmed,
		Mode: mode,
		Size: int64(len(content)),
	}); err != nil {
		return fmt.Errorf("write file header: %w", err)
	}
	if _, err := tw.Write([]byte(content)); err != nil {
		return fmt.Errorf("write file body: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar writer: %w", err)
	}

	return c.docker.CopyToContainer(ctx, c.id, uploadRoot, &buf, dockercontainer.CopyToContainerOptions{})
}

// parentDirsRootToLeaf returns the parent directories of a slash-separated,
// archive-relative path, ordered from the root down to its immediate
// parent, so a tar writer can emit them in a valid creation order.
func parentDirsRootToLeaf(archivePath string) []string {
	var dirs []string
	dir := path.Dir(archivePath)
	for dir != "." && dir != "/" && dir != "" {
		dirs = append(dirs, dir)
		dir = path.Dir(dir)
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}

func absPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %s: %w", dir, err)
	}
	return abs, nil
}

func randomHex(n int) string {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		return "fallback"
	}
	return hex.EncodeToString(b)
}
