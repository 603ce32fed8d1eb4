// Package docker connects to the Docker daemon for docker:// locators.
package docker

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/client"
	"github.com/dyluth/filedock/internal/bytesource"
)

// NewClient creates a Docker client and validates daemon is accessible.
// Returns an error if the Docker daemon is not running or not accessible.
func NewClient(ctx context.Context) (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf(`Docker daemon not accessible: %w

docker:// locators need a running daemon:
  • macOS: Docker Desktop
  • Linux: sudo systemctl start docker`, err)
	}

	return cli, nil
}

// NewSource connects to the daemon and returns a source for docker://
// locators. The returned client must be closed by the caller.
func NewSource(ctx context.Context, readTimeout time.Duration) (*bytesource.DockerSource, *client.Client, error) {
	cli, err := NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &bytesource.DockerSource{Client: cli, ReadTimeout: readTimeout}, cli, nil
}
