package bytesource

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
)

// ContainerCopier is the part of the Docker client DockerSource needs.
// *client.Client satisfies it.
type ContainerCopier interface {
	CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, types.ContainerPathStat, error)
}

// DockerSource reads samples from files inside containers, addressed as
// docker://<container>/<absolute path>. The daemon streams the file as a tar
// archive; only the first entry's prefix is read.
type DockerSource struct {
	Client      ContainerCopier
	ReadTimeout time.Duration
}

// ParseDockerLocator splits docker://<container>/<path> into its parts.
func ParseDockerLocator(locator string) (container, path string, err error) {
	scheme, rest := Scheme(locator)
	if scheme != "docker" {
		return "", "", fmt.Errorf("not a docker locator: %s", locator)
	}
	i := strings.Index(rest, "/")
	if i <= 0 || i == len(rest)-1 {
		return "", "", fmt.Errorf("docker locator must be docker://<container>/<path>, got %s", locator)
	}
	return rest[:i], rest[i:], nil
}

// OpenPrefix implements Source.
func (s *DockerSource) OpenPrefix(ctx context.Context, locator string, maxLen int) ([]byte, error) {
	container, path, err := ParseDockerLocator(locator)
	if err != nil {
		return nil, accessError(locator, err)
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxBytes
	}

	// The copy call itself honours ctx, so the deadline has to be in place
	// before it is made rather than only around the read.
	return readWithTimeout(ctx, locator, s.ReadTimeout, func() ([]byte, error) {
		rc, stat, err := s.Client.CopyFromContainer(ctx, container, path)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		if stat.Mode.IsDir() {
			return nil, fmt.Errorf("%w: %s is a directory", ErrNotRegularFile, path)
		}

		tr := tar.NewReader(rc)
		hdr, err := tr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("empty archive for %s", path)
			}
			return nil, fmt.Errorf("failed to read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
		}
		return readPrefix(tr, maxLen)
	})
}
