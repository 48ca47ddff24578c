// Package runner manages the container lifecycle for the target engine and
// the loader tool through the Docker API.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"mysql2pg/internal/console"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

const (
	Network         = "sql_default"
	PGContainer     = "pg-target"
	PGImage         = "postgres:16-alpine"
	LoaderImage     = "dimitri/pgloader:latest"
	LoaderContainer = "pgloader_runner"

	// Name used before the loader choked on underscores in host aliases.
	legacyPGContainer = "pg_target"
)

// Runner wraps the Docker client with the small surface this pipeline needs.
type Runner struct {
	cli *client.Client
}

// New connects to the Docker daemon and pings it.
func New(ctx context.Context) (*Runner, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("cannot create Docker client: %w", err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		return nil, fmt.Errorf("cannot connect to Docker (is the daemon running?): %w", err)
	}
	return &Runner{cli: cli}, nil
}

// HasImage reports whether the image is present locally.
func (r *Runner) HasImage(ctx context.Context, ref string) bool {
	_, _, err := r.cli.ImageInspectWithRaw(ctx, ref)
	return err == nil
}

// EnsureImage pulls the image if it is not present.
func (r *Runner) EnsureImage(ctx context.Context, ref string, con *console.Console) error {
	if r.HasImage(ctx, ref) {
		return nil
	}
	con.Printf("  Pulling %s...\n", ref)
	reader, err := r.cli.ImagePull(ctx, ref, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer reader.Close()
	// The pull finishes when the progress stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("image pull interrupted for %s: %w", ref, err)
	}
	return nil
}

// EnsureNetwork creates the bridge network if it does not exist.
func (r *Runner) EnsureNetwork(ctx context.Context) error {
	if _, err := r.cli.NetworkInspect(ctx, Network, types.NetworkInspectOptions{}); err == nil {
		return nil
	} else if !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to inspect network %q: %w", Network, err)
	}
	if _, err := r.cli.NetworkCreate(ctx, Network, types.NetworkCreate{Driver: "bridge"}); err != nil {
		return fmt.Errorf("failed to create network %q: %w", Network, err)
	}
	return nil
}

// Remove force-removes a container. Missing containers are not an error.
func (r *Runner) Remove(ctx context.Context, name string) error {
	err := r.cli.ContainerRemove(ctx, name, types.ContainerRemoveOptions{Force: true})
	if err != nil && !client.IsErrNotFound(err) {
		return err
	}
	return nil
}

// StreamLogs follows the container's combined output and calls fn for every
// line until the process exits and the stream closes. The sequence is finite
// and not restartable.
func (r *Runner) StreamLogs(ctx context.Context, id string, fn func(line string)) error {
	rc, err := r.cli.ContainerLogs(ctx, id, types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to attach to container logs: %w", err)
	}
	defer rc.Close()

	// Demultiplex the stdout/stderr framing into one line stream.
	pr, pw := io.Pipe()
	go func() {
		_, err := stdcopy.StdCopy(pw, pw, rc)
		pw.CloseWithError(err)
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if text := strings.TrimRight(scanner.Text(), "\r\n"); text != "" {
			fn(text)
		}
	}
	return scanner.Err()
}

// Wait blocks until the container stops or the timeout elapses, returning
// the process exit code.
func (r *Runner) Wait(ctx context.Context, id string, timeout time.Duration) (int64, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	statusCh, errCh := r.cli.ContainerWait(waitCtx, id, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		return status.StatusCode, nil
	case err := <-errCh:
		return -1, fmt.Errorf("container wait failed: %w", err)
	}
}
