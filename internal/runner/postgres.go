package runner

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mysql2pg/internal/config"
	"mysql2pg/internal/console"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// EnsurePostgres starts the target container, reusing it if one with the
// expected name is already running. A stopped container of the same name is
// removed and recreated.
func (r *Runner) EnsurePostgres(ctx context.Context, pg *config.PGConfig, con *console.Console) error {
	// The legacy underscore name breaks the loader's host alias resolution.
	if err := r.Remove(ctx, legacyPGContainer); err != nil {
		con.Warnf("could not remove legacy container %q: %v\n", legacyPGContainer, err)
	}

	if existing, err := r.cli.ContainerInspect(ctx, PGContainer); err == nil {
		if existing.State != nil && existing.State.Running {
			con.Printf("  ✓ PostgreSQL container already running\n")
			return nil
		}
		con.Printf("  Removing stopped container %q...\n", PGContainer)
		if err := r.Remove(ctx, PGContainer); err != nil {
			return fmt.Errorf("cannot remove old container %q: %w", PGContainer, err)
		}
	} else if !client.IsErrNotFound(err) {
		return fmt.Errorf("failed to inspect container %q: %w", PGContainer, err)
	}

	if err := r.EnsureImage(ctx, PGImage, con); err != nil {
		return err
	}
	if err := r.EnsureNetwork(ctx); err != nil {
		return err
	}

	hostPort := nat.Port("5432/tcp")
	created, err := r.cli.ContainerCreate(ctx,
		&container.Config{
			Image: PGImage,
			Env: []string{
				"POSTGRES_USER=" + pg.User,
				"POSTGRES_PASSWORD=" + pg.Password,
				"POSTGRES_DB=" + pg.Database,
			},
			ExposedPorts: nat.PortSet{hostPort: struct{}{}},
			Healthcheck: &container.HealthConfig{
				Test:     []string{"CMD-SHELL", "pg_isready -U " + pg.User},
				Interval: 5 * time.Second,
				Timeout:  5 * time.Second,
				Retries:  5,
			},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				hostPort: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(pg.Port)}},
			},
			Binds:         []string{"sql_pgdata:/var/lib/postgresql/data"},
			NetworkMode:   container.NetworkMode(Network),
			RestartPolicy: container.RestartPolicy{Name: "unless-stopped"},
		},
		&network.NetworkingConfig{},
		nil,
		PGContainer)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "port is already allocated") || strings.Contains(msg, "address already in use"):
			return fmt.Errorf("port %d is already in use: stop the conflicting service or change postgresql.port in %s", pg.Port, config.FileName)
		case strings.Contains(msg, "Conflict"):
			return fmt.Errorf("container name %q conflict: try 'docker rm -f %s' (%w)", PGContainer, PGContainer, err)
		default:
			return fmt.Errorf("failed to create PostgreSQL container: %w", err)
		}
	}

	if err := r.cli.ContainerStart(ctx, created.ID, types.ContainerStartOptions{}); err != nil {
		return fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}
	return nil
}

// WaitHealthy polls the container's health status until it reports healthy,
// the container exits, or the timeout elapses.
func (r *Runner) WaitHealthy(ctx context.Context, name string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		cont, err := r.cli.ContainerInspect(ctx, name)
		if err != nil {
			return false
		}
		if cont.State != nil {
			if cont.State.Health != nil && cont.State.Health.Status == "healthy" {
				return true
			}
			if !cont.State.Running {
				return false
			}
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(2 * time.Second):
		}
	}
	return false
}

// RunLoader starts the loader container with the generated config mounted
// read-only and returns the container ID. The caller streams its logs and
// waits for completion.
func (r *Runner) RunLoader(ctx context.Context, configDir string, extraHosts []string, con *console.Console) (string, error) {
	if err := r.EnsureImage(ctx, LoaderImage, con); err != nil {
		return "", err
	}
	if err := r.EnsureNetwork(ctx); err != nil {
		return "", err
	}
	if err := r.Remove(ctx, LoaderContainer); err != nil {
		con.Warnf("could not remove old loader container: %v\n", err)
	}

	created, err := r.cli.ContainerCreate(ctx,
		&container.Config{
			Image: LoaderImage,
			Cmd:   strslice.StrSlice{"pgloader", "/pgloader/migration.load"},
		},
		&container.HostConfig{
			Binds:       []string{configDir + ":/pgloader:ro"},
			NetworkMode: container.NetworkMode(Network),
			ExtraHosts:  extraHosts,
		},
		&network.NetworkingConfig{},
		nil,
		LoaderContainer)
	if err != nil {
		if strings.Contains(err.Error(), "Conflict") {
			return "", fmt.Errorf("loader container name conflict: try 'docker rm -f %s'", LoaderContainer)
		}
		return "", fmt.Errorf("failed to start loader container: %w", err)
	}
	if err := r.cli.ContainerStart(ctx, created.ID, types.ContainerStartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start loader container: %w", err)
	}
	return created.ID, nil
}
